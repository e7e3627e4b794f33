package engine

import (
	"time"

	"github.com/FugLong/miditohid/hid"
)

// timedRelease is one pending fast-press release.
type timedRelease struct {
	key  uint8
	mods uint8
	due  time.Time
}

// scheduler keeps pending fast-press releases sorted by deadline, so they
// fire in the order their deadlines expire. Equal deadlines fire in
// scheduling order. Capacity matches the pressed-key ceiling.
type scheduler struct {
	entries [hid.NumSlots]timedRelease
	n       int
}

// schedule inserts a release at its deadline position. Reports false when
// the table is full.
func (s *scheduler) schedule(key, mods uint8, due time.Time) bool {
	if s.n == len(s.entries) {
		return false
	}
	i := s.n
	for i > 0 && s.entries[i-1].due.After(due) {
		s.entries[i] = s.entries[i-1]
		i--
	}
	s.entries[i] = timedRelease{key: key, mods: mods, due: due}
	s.n++
	return true
}

// popDue removes and returns the earliest entry whose deadline has passed.
func (s *scheduler) popDue(now time.Time) (key, mods uint8, ok bool) {
	if s.n == 0 || s.entries[0].due.After(now) {
		return 0, 0, false
	}
	e := s.entries[0]
	copy(s.entries[:], s.entries[1:s.n])
	s.n--
	s.entries[s.n] = timedRelease{}
	return e.key, e.mods, true
}

// clear drops all pending releases.
func (s *scheduler) clear() { *s = scheduler{} }

func (s *scheduler) pending() int { return s.n }
