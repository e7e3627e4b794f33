package keymap

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the global configuration file looked up in the mappings
// directory, case-insensitively.
const ConfigFileName = "CONFIG.TXT"

// LoadDir discovers the global configuration and every mapping source in
// dir. Mapping sources are files whose name contains "MAPPINGS" and ends in
// ".TXT" (case-insensitive), in name order; each becomes one profile named
// after its file. A missing directory yields defaults and no sources.
func LoadDir(dir string) (Config, []Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("keymap: mappings directory missing, using defaults", "dir", dir)
			return DefaultConfig(), nil, nil
		}
		return DefaultConfig(), nil, fmt.Errorf("read mappings dir: %w", err)
	}

	cfg := DefaultConfig()
	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		upper := strings.ToUpper(e.Name())
		switch {
		case upper == ConfigFileName:
			lines, err := readLines(filepath.Join(dir, e.Name()))
			if err != nil {
				slog.Error("keymap: cannot read config file", "file", e.Name(), "err", err)
				continue
			}
			cfg = ParseConfig(lines)
		case strings.Contains(upper, "MAPPINGS") && strings.HasSuffix(upper, ".TXT"):
			lines, err := readLines(filepath.Join(dir, e.Name()))
			if err != nil {
				slog.Error("keymap: cannot read mapping file", "file", e.Name(), "err", err)
				continue
			}
			name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			sources = append(sources, Source{Name: name, Lines: lines})
		}
	}
	return cfg, sources, nil
}

// Load reads dir and builds the profile store in one step.
func Load(dir string) (*Store, error) {
	cfg, sources, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return NewStore(cfg, sources), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
