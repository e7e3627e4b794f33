//go:build linux

package kbd

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
)

func TestNoteTableAnchors(t *testing.T) {
	if noteByCode[evdev.KEY_Z] != 48 {
		t.Errorf("Z = %d, want 48 (C3)", noteByCode[evdev.KEY_Z])
	}
	if noteByCode[evdev.KEY_Q] != 60 {
		t.Errorf("Q = %d, want 60 (middle C)", noteByCode[evdev.KEY_Q])
	}
	// The rows overlap by a fourth: the Z row's C4 is the Q row's anchor.
	if noteByCode[evdev.KEY_COMMA] != noteByCode[evdev.KEY_Q] {
		t.Error("comma and Q should sound the same note")
	}
}

func TestNoteTableRowsAreChromatic(t *testing.T) {
	rows := [][]uint16{
		{evdev.KEY_Z, evdev.KEY_S, evdev.KEY_X, evdev.KEY_D, evdev.KEY_C,
			evdev.KEY_V, evdev.KEY_G, evdev.KEY_B, evdev.KEY_H, evdev.KEY_N,
			evdev.KEY_J, evdev.KEY_M, evdev.KEY_COMMA, evdev.KEY_L,
			evdev.KEY_DOT, evdev.KEY_SEMICOLON, evdev.KEY_SLASH},
		{evdev.KEY_Q, evdev.KEY_2, evdev.KEY_W, evdev.KEY_3, evdev.KEY_E,
			evdev.KEY_R, evdev.KEY_5, evdev.KEY_T, evdev.KEY_6, evdev.KEY_Y,
			evdev.KEY_7, evdev.KEY_U, evdev.KEY_I, evdev.KEY_9, evdev.KEY_O,
			evdev.KEY_0, evdev.KEY_P, evdev.KEY_LEFTBRACE, evdev.KEY_EQUAL,
			evdev.KEY_RIGHTBRACE, evdev.KEY_BACKSPACE, evdev.KEY_BACKSLASH},
	}
	for r, row := range rows {
		for i := 1; i < len(row); i++ {
			prev, cur := noteByCode[row[i-1]], noteByCode[row[i]]
			if cur != prev+1 {
				t.Errorf("row %d position %d: note %d follows %d, want a semitone step", r, i, cur, prev)
			}
		}
	}
}

func TestDrainDiscardsBacklog(t *testing.T) {
	s := &Source{name: "kb", events: make(chan Event, 4)}
	s.deliver(Event{Device: "kb", On: true, Note: 60, Velocity: pressVelocity})
	s.deliver(Event{Device: "kb", On: false, Note: 60})

	s.Drain()

	select {
	case ev := <-s.Events():
		t.Fatalf("drained source still queued %+v", ev)
	default:
	}
}

func TestNoteTableStaysInShiftedRange(t *testing.T) {
	// Every mapped key must stay a valid note across the full octave
	// shift range.
	for code, note := range noteByCode {
		lo := int(note) + 12*minOctaveShift
		hi := int(note) + 12*maxOctaveShift
		if lo < 0 || hi > 127 {
			t.Errorf("key %d: note %d shifts out of range (%d..%d)", code, note, lo, hi)
		}
	}
}
