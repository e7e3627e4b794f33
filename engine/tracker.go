// Package engine is the translation core. It resolves note events through
// the active profile, tracks pressed keys and held modifiers, schedules
// fast-press releases, and serializes every state change into keyboard
// report snapshots for the sink.
//
// The engine is single-owner: exactly one goroutine, the driver loop, calls
// into it. All state is fixed-size and the note path allocates nothing.
package engine

import "github.com/FugLong/miditohid/hid"

// pressedKey is one tracked press: a key usage ID plus the modifier value it
// was mapped with. Modifier-only presses are not entries here; they
// accumulate in the tracker's held mask instead.
type pressedKey struct {
	key  uint8
	mods uint8
}

// tracker holds the ordered set of pressed keys, capped at the report's
// slot count, plus the mask of held modifier-only keys. Order is press
// order and is never re-sorted.
type tracker struct {
	keys     [hid.NumSlots]pressedKey
	n        int
	heldMods uint8
}

// add appends a press. Exact duplicates and presses beyond capacity leave
// the set unchanged and report false.
func (t *tracker) add(key, mods uint8) bool {
	if key == 0 {
		return false
	}
	p := pressedKey{key: key, mods: mods}
	for i := 0; i < t.n; i++ {
		if t.keys[i] == p {
			return false
		}
	}
	if t.n == len(t.keys) {
		return false
	}
	t.keys[t.n] = p
	t.n++
	return true
}

// remove deletes the first press matching the exact pair, preserving the
// order of the remainder. Reports false when the pair is not held.
func (t *tracker) remove(key, mods uint8) bool {
	p := pressedKey{key: key, mods: mods}
	for i := 0; i < t.n; i++ {
		if t.keys[i] == p {
			copy(t.keys[i:], t.keys[i+1:t.n])
			t.n--
			t.keys[t.n] = pressedKey{}
			return true
		}
	}
	return false
}

func (t *tracker) pressMods(mask uint8)   { t.heldMods |= mask }
func (t *tracker) releaseMods(mask uint8) { t.heldMods &^= mask }

// clear drops every pressed key and held modifier.
func (t *tracker) clear() { *t = tracker{} }

// pressed returns the live pressed-key slice, oldest press first.
func (t *tracker) pressed() []pressedKey { return t.keys[:t.n] }
