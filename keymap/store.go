package keymap

import (
	"log/slog"

	"github.com/FugLong/miditohid/hid"
)

// MaxProfiles bounds how many mapping sources become selectable profiles.
const MaxProfiles = 8

// Source is one discovered group of mapping lines, usually one file.
type Source struct {
	Name  string
	Lines []string
}

// Store owns the loaded profiles and the active-profile cursor. It is built
// once per load and afterwards touched only by the driver loop, so it needs
// no locking.
type Store struct {
	profiles   []*Profile
	active     int
	switchNote uint8
}

// NewStore builds the profile set from ordered sources. Sources that yield
// no mappings are dropped; if no usable source remains, a built-in "default"
// profile (60=H, 58=G) takes their place, so the store is never empty. The
// first profile starts active.
func NewStore(cfg Config, sources []Source) *Store {
	st := &Store{switchNote: cfg.SwitchNote}
	for _, src := range sources {
		if len(st.profiles) == MaxProfiles {
			slog.Warn("keymap: too many mapping sources, ignoring the rest", "max", MaxProfiles, "first_dropped", src.Name)
			break
		}
		p := buildProfile(src.Name, src.Lines, cfg.Settings)
		if p.Mapped == 0 {
			slog.Warn("keymap: source has no usable mappings, skipping", "profile", src.Name)
			continue
		}
		slog.Info("keymap: profile loaded",
			"profile", p.Name,
			"mappings", p.Mapped,
			"fast_press", p.FastPress,
			"press_duration", p.PressDuration,
		)
		st.profiles = append(st.profiles, p)
	}
	if len(st.profiles) == 0 {
		st.profiles = append(st.profiles, fallbackProfile(cfg.Settings))
		slog.Warn("keymap: no profiles loaded, using built-in default")
	}
	return st
}

// fallbackProfile covers the no-configuration case with two test mappings.
func fallbackProfile(defaults Settings) *Profile {
	p := &Profile{Name: "default", Settings: defaults}
	p.table[60] = hid.Mapping{Key: hid.KeyH}
	p.table[58] = hid.Mapping{Key: hid.KeyG}
	p.Mapped = 2
	return p
}

// Active returns the active profile. The store always holds at least one.
func (s *Store) Active() *Profile { return s.profiles[s.active] }

// ActiveIndex returns the position of the active profile in rotation order.
func (s *Store) ActiveIndex() int { return s.active }

// Count returns the number of loaded profiles.
func (s *Store) Count() int { return len(s.profiles) }

// SwitchNote returns the note that triggers a profile switch, or
// SwitchDisabled when switching is off.
func (s *Store) SwitchNote() uint8 { return s.switchNote }

// Profiles returns the loaded profiles in rotation order.
func (s *Store) Profiles() []*Profile {
	out := make([]*Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Names returns the profile names in rotation order.
func (s *Store) Names() []string {
	names := make([]string, len(s.profiles))
	for i, p := range s.profiles {
		names[i] = p.Name
	}
	return names
}

// SwitchNext advances the active profile cyclically. With fewer than two
// profiles it reports ok=false and changes nothing.
func (s *Store) SwitchNext() (from, to string, ok bool) {
	if len(s.profiles) < 2 {
		return s.Active().Name, s.Active().Name, false
	}
	from = s.Active().Name
	s.active = (s.active + 1) % len(s.profiles)
	return from, s.Active().Name, true
}
