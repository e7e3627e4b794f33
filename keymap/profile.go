// Package keymap loads note-to-key profiles from line-oriented text files
// and tracks which profile is active. Profiles are built once per load and
// immutable afterwards; only the active-profile cursor moves.
package keymap

import (
	"log/slog"
	"strings"
	"time"

	"github.com/FugLong/miditohid/hid"
)

// NumNotes is the size of every profile's note table (the MIDI note range).
const NumNotes = 128

// maxPressDurationMs caps PRESS_DURATION at one second.
const maxPressDurationMs = 1000

// Settings are the timing knobs every profile carries. FastPress releases
// keys on a timer instead of waiting for the note-off; a PressDuration of 0
// means press and release back-to-back.
type Settings struct {
	FastPress     bool
	PressDuration time.Duration
}

// SwitchDisabled as Config.SwitchNote turns profile switching off.
const SwitchDisabled = 255

// DefaultSwitchNote is the note that cycles profiles unless overridden (C1).
const DefaultSwitchNote = 24

// Config is the global configuration, parsed before any profile and used to
// seed each profile's settings.
type Config struct {
	Settings
	SwitchNote uint8
}

// DefaultConfig returns the stock configuration: fast press with immediate
// release, profile switch on note 24.
func DefaultConfig() Config {
	return Config{
		Settings:   Settings{FastPress: true, PressDuration: 0},
		SwitchNote: DefaultSwitchNote,
	}
}

// ParseConfig applies SETTING=VALUE lines from the global configuration file
// on top of the defaults. Unknown settings are ignored.
func ParseConfig(lines []string) Config {
	cfg := DefaultConfig()
	for _, raw := range lines {
		key, val, ok := splitLine(raw)
		if !ok {
			continue
		}
		if applySetting(&cfg.Settings, key, val) {
			continue
		}
		switch key {
		case "PROFILE_SWITCH_NOTE", "PROFILE_SWITCH", "SWITCH_NOTE":
			n := leadingInt(val)
			if (n >= 0 && n < NumNotes) || n == SwitchDisabled {
				cfg.SwitchNote = uint8(n)
			} else {
				slog.Warn("keymap: switch note out of range", "value", val)
			}
		default:
			slog.Debug("keymap: unknown config setting", "setting", key)
		}
	}
	return cfg
}

// Profile is one named 128-entry note table plus its own timing settings.
type Profile struct {
	Name string
	Settings
	Mapped int // successfully parsed mapping lines
	table  [NumNotes]hid.Mapping
}

// Lookup returns the mapping for a note, or the zero mapping when the note
// is unmapped or out of range.
func (p *Profile) Lookup(note uint8) hid.Mapping {
	if int(note) >= NumNotes {
		return hid.Mapping{}
	}
	return p.table[note]
}

// buildProfile scans one source's lines into a Profile seeded with the
// global settings. Bad lines are skipped with a warning; later mappings for
// the same note overwrite earlier ones.
func buildProfile(name string, lines []string, defaults Settings) *Profile {
	p := &Profile{Name: name, Settings: defaults}
	for _, raw := range lines {
		key, val, ok := splitLine(raw)
		if !ok {
			continue
		}
		if applySetting(&p.Settings, key, val) {
			continue
		}
		note := leadingInt(key)
		if note < 0 || note >= NumNotes {
			slog.Warn("keymap: note out of range", "profile", name, "line", key)
			continue
		}
		text := val
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		m, err := hid.ParseMapping(text)
		if err != nil {
			if hint, ok := hid.SuggestKey(text); ok {
				slog.Warn("keymap: bad mapping line", "profile", name, "note", note, "err", err, "did_you_mean", hint)
			} else {
				slog.Warn("keymap: bad mapping line", "profile", name, "note", note, "err", err)
			}
			continue
		}
		p.table[note] = m
		p.Mapped++
	}
	return p
}

// splitLine splits one line into an upper-cased setting name and its raw
// trimmed value. Blank lines, "#" comments, bracketed section headers, and
// lines without "=" after the first column report ok=false.
func splitLine(raw string) (key, val string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
		return "", "", false
	}
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(line[:i]))
	val = strings.TrimSpace(line[i+1:])
	return key, val, true
}

// applySetting handles the setting keywords shared by the global
// configuration and per-profile overrides. Reports whether key matched.
func applySetting(s *Settings, key, val string) bool {
	switch key {
	case "FAST_PRESS_MODE", "FASTPRESS":
		s.FastPress = parseBool(val)
	case "PRESS_DURATION", "DURATION":
		if d := leadingInt(val); d >= 0 && d <= maxPressDurationMs {
			s.PressDuration = time.Duration(d) * time.Millisecond
		} else {
			slog.Warn("keymap: press duration out of range", "value", val)
		}
	default:
		return false
	}
	return true
}

// parseBool accepts 1/TRUE/ON/YES in any case; everything else is false.
func parseBool(val string) bool {
	switch strings.ToUpper(val) {
	case "1", "TRUE", "ON", "YES":
		return true
	}
	return false
}

// leadingInt reads an optionally signed decimal prefix, ignoring whatever
// follows it. Text with no leading digits parses as 0.
func leadingInt(s string) int {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n < 1<<24 { // stop growing well past any valid value
			n = n*10 + int(s[i]-'0')
		}
	}
	if neg {
		return -n
	}
	return n
}
