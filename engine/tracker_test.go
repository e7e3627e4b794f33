package engine

import (
	"testing"

	"github.com/FugLong/miditohid/hid"
)

func TestTrackerAddDedup(t *testing.T) {
	var tr tracker
	if !tr.add(hid.KeyA, 0) {
		t.Fatal("first add refused")
	}
	if tr.add(hid.KeyA, 0) {
		t.Error("duplicate add accepted")
	}
	if tr.n != 1 {
		t.Errorf("n = %d, want 1", tr.n)
	}

	// Same key under a different modifier is a distinct press.
	if !tr.add(hid.KeyA, hid.ModLeftShift) {
		t.Error("same key with different mods refused")
	}
	if tr.n != 2 {
		t.Errorf("n = %d, want 2", tr.n)
	}
}

func TestTrackerAddRefusesZeroKey(t *testing.T) {
	var tr tracker
	if tr.add(0, hid.ModLeftShift) {
		t.Error("zero key code accepted")
	}
	if tr.n != 0 {
		t.Errorf("n = %d, want 0", tr.n)
	}
}

func TestTrackerCapacity(t *testing.T) {
	var tr tracker
	keys := []uint8{hid.KeyA, hid.KeyB, hid.KeyC, hid.KeyD, hid.KeyE, hid.KeyF}
	for _, k := range keys {
		if !tr.add(k, 0) {
			t.Fatalf("add(%#02x) refused below capacity", k)
		}
	}
	if tr.add(hid.KeyG, 0) {
		t.Error("seventh press accepted past capacity")
	}
	if tr.n != hid.NumSlots {
		t.Errorf("n = %d, want %d", tr.n, hid.NumSlots)
	}

	// The drop leaves the first six untouched.
	for i, k := range tr.pressed() {
		if k.key != keys[i] {
			t.Errorf("slot %d = %#02x, want %#02x", i, k.key, keys[i])
		}
	}
}

func TestTrackerRemoveKeepsOrder(t *testing.T) {
	var tr tracker
	tr.add(hid.KeyA, 0)
	tr.add(hid.KeyB, 0)
	tr.add(hid.KeyC, 0)

	if !tr.remove(hid.KeyB, 0) {
		t.Fatal("remove of held key failed")
	}
	got := tr.pressed()
	if len(got) != 2 || got[0].key != hid.KeyA || got[1].key != hid.KeyC {
		t.Errorf("pressed after remove = %v, want [A C] in order", got)
	}

	// Vacated tail slot is zeroed, not stale.
	if tr.keys[2] != (pressedKey{}) {
		t.Errorf("tail slot not cleared: %v", tr.keys[2])
	}
}

func TestTrackerRemoveMatchesFullPair(t *testing.T) {
	var tr tracker
	tr.add(hid.KeyA, hid.ModLeftShift)

	if tr.remove(hid.KeyA, 0) {
		t.Error("remove matched on key alone, modifiers ignored")
	}
	if tr.n != 1 {
		t.Fatalf("press lost by mismatched remove")
	}
	if !tr.remove(hid.KeyA, hid.ModLeftShift) {
		t.Error("exact pair remove failed")
	}
}

func TestTrackerRemoveAddRoundTrip(t *testing.T) {
	var tr tracker
	tr.add(hid.KeyA, 0)
	tr.remove(hid.KeyA, 0)
	if !tr.add(hid.KeyA, 0) {
		t.Error("re-add after remove refused")
	}
	if tr.n != 1 {
		t.Errorf("n = %d, want 1", tr.n)
	}
}

func TestTrackerHeldMods(t *testing.T) {
	var tr tracker
	tr.pressMods(hid.ModLeftShift)
	tr.pressMods(hid.ModLeftCtrl)
	if tr.heldMods != hid.ModLeftShift|hid.ModLeftCtrl {
		t.Errorf("heldMods = %#02x after two presses", tr.heldMods)
	}
	tr.releaseMods(hid.ModLeftShift)
	if tr.heldMods != hid.ModLeftCtrl {
		t.Errorf("heldMods = %#02x after shift release", tr.heldMods)
	}
	// Releasing a bit that is not held is harmless.
	tr.releaseMods(hid.ModLeftAlt)
	if tr.heldMods != hid.ModLeftCtrl {
		t.Errorf("heldMods = %#02x after no-op release", tr.heldMods)
	}
}

func TestTrackerClear(t *testing.T) {
	var tr tracker
	tr.add(hid.KeyA, 0)
	tr.add(hid.KeyB, hid.ModLeftShift)
	tr.pressMods(hid.ModLeftCtrl)
	tr.clear()
	if tr.n != 0 || tr.heldMods != 0 {
		t.Errorf("clear left state behind: n=%d mods=%#02x", tr.n, tr.heldMods)
	}
	if tr.keys[0] != (pressedKey{}) {
		t.Error("clear left a stale slot")
	}
}
