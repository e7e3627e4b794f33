// Package config loads the application configuration from a TOML file and
// the environment. Every key has a default, so running with no file at all
// works.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/FugLong/miditohid/midi"
)

// Config holds application configuration.
type Config struct {
	Mappings MappingsConfig
	MIDI     MIDIConfig
	Keyboard KeyboardConfig
	Sink     SinkConfig
	Serial   SerialConfig
	Debug    bool
}

// MappingsConfig locates the profile directory.
type MappingsConfig struct {
	Dir string
}

// MIDIConfig controls input device selection.
type MIDIConfig struct {
	Prefer  []string
	Exclude []string
}

// KeyboardConfig selects an optional keyboard capture device.
type KeyboardConfig struct {
	Device string
}

// SinkConfig selects the report destination: log, serial, or uinput.
type SinkConfig struct {
	Type string
}

// SerialConfig holds the microcontroller bridge settings.
type SerialConfig struct {
	Port string
	Baud int
}

// Load reads configuration from file and env. Env var overrides use prefix
// MIDITOHID_; MIDITOHID_CONFIG points at an explicit config file.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("mappings.dir", filepath.Join(os.Getenv("HOME"), ".config", "miditohid", "mappings"))
	v.SetDefault("midi.prefer", []string{})
	v.SetDefault("midi.exclude", midi.DefaultExcludedPatterns)
	v.SetDefault("keyboard.device", "")
	v.SetDefault("sink.type", "log")
	v.SetDefault("serial.port", "/dev/ttyACM0")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("debug", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MIDITOHID_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "miditohid"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MIDITOHID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A file named explicitly must load; the search path is best-effort.
	if err := v.ReadInConfig(); err != nil && cfgPath != "" {
		return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
