package engine

import (
	"testing"

	"github.com/FugLong/miditohid/hid"
)

func rep(mods uint8, keys ...uint8) hid.Report {
	r := hid.Report{Mods: mods}
	copy(r.Keys[:], keys)
	return r
}

func TestAppendReportsEmpty(t *testing.T) {
	got := appendReports(nil, nil, 0)
	if len(got) != 1 {
		t.Fatalf("got %d reports, want 1", len(got))
	}
	if !got[0].IsZero() {
		t.Errorf("empty state report = %s, want all zero", got[0])
	}
}

func TestAppendReportsUniformChord(t *testing.T) {
	keys := []pressedKey{
		{hid.KeyA, hid.ModLeftShift},
		{hid.KeyB, hid.ModLeftShift},
		{hid.KeyC, hid.ModLeftShift},
	}
	got := appendReports(nil, keys, 0)
	if len(got) != 1 {
		t.Fatalf("got %d reports, want 1 for a uniform chord", len(got))
	}
	want := rep(hid.ModLeftShift, hid.KeyA, hid.KeyB, hid.KeyC)
	if got[0] != want {
		t.Errorf("report = %s, want %s", got[0], want)
	}
}

func TestAppendReportsSplitsOnModifierChange(t *testing.T) {
	// Alternating modifiers break the chord into per-run reports even when
	// the outer runs share a modifier.
	keys := []pressedKey{
		{hid.KeyA, 0},
		{hid.KeyB, hid.ModLeftShift},
		{hid.KeyC, 0},
	}
	got := appendReports(nil, keys, 0)
	want := []hid.Report{
		rep(0, hid.KeyA),
		rep(hid.ModLeftShift, hid.KeyB),
		rep(0, hid.KeyC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reports, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAppendReportsAdjacentRunsMerge(t *testing.T) {
	keys := []pressedKey{
		{hid.KeyA, 0},
		{hid.KeyB, 0},
		{hid.KeyC, hid.ModLeftShift},
		{hid.KeyD, hid.ModLeftShift},
	}
	got := appendReports(nil, keys, 0)
	want := []hid.Report{
		rep(0, hid.KeyA, hid.KeyB),
		rep(hid.ModLeftShift, hid.KeyC, hid.KeyD),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reports, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAppendReportsHeldModsOverlay(t *testing.T) {
	// Modifier-only presses shade every report, including the empty one.
	got := appendReports(nil, nil, hid.ModLeftCtrl)
	if len(got) != 1 || got[0] != rep(hid.ModLeftCtrl) {
		t.Fatalf("empty state with held mods = %v", got)
	}

	keys := []pressedKey{{hid.KeyA, hid.ModLeftShift}}
	got = appendReports(nil, keys, hid.ModLeftCtrl)
	want := rep(hid.ModLeftShift|hid.ModLeftCtrl, hid.KeyA)
	if len(got) != 1 || got[0] != want {
		t.Errorf("overlay report = %v, want %s", got, want)
	}
}

func TestAppendReportsReusesDst(t *testing.T) {
	buf := make([]hid.Report, 0, 4)
	keys := []pressedKey{{hid.KeyA, 0}}
	got := appendReports(buf, keys, 0)
	if &got[:1][0] != &buf[:1][0] {
		t.Error("append did not reuse the provided buffer")
	}
}
