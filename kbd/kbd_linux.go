//go:build linux

package kbd

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	evdev "github.com/gvalkov/golang-evdev"
)

// noteByCode lays two piano rows over a QWERTY layout: the Z row is the
// lower octave anchored at C3, the Q row the upper anchored at middle C,
// with the digit row supplying the sharps. The Z row's tail overlaps the
// start of the Q row, same as on hardware mini keyboards.
var noteByCode = map[uint16]uint8{
	evdev.KEY_Z:         48, // C3
	evdev.KEY_S:         49,
	evdev.KEY_X:         50,
	evdev.KEY_D:         51,
	evdev.KEY_C:         52,
	evdev.KEY_V:         53,
	evdev.KEY_G:         54,
	evdev.KEY_B:         55,
	evdev.KEY_H:         56,
	evdev.KEY_N:         57,
	evdev.KEY_J:         58,
	evdev.KEY_M:         59,
	evdev.KEY_COMMA:     60,
	evdev.KEY_L:         61,
	evdev.KEY_DOT:       62,
	evdev.KEY_SEMICOLON: 63,
	evdev.KEY_SLASH:     64,

	evdev.KEY_Q:          60, // C4, middle C
	evdev.KEY_2:          61,
	evdev.KEY_W:          62,
	evdev.KEY_3:          63,
	evdev.KEY_E:          64,
	evdev.KEY_R:          65,
	evdev.KEY_5:          66,
	evdev.KEY_T:          67,
	evdev.KEY_6:          68,
	evdev.KEY_Y:          69,
	evdev.KEY_7:          70,
	evdev.KEY_U:          71,
	evdev.KEY_I:          72,
	evdev.KEY_9:          73,
	evdev.KEY_O:          74,
	evdev.KEY_0:          75,
	evdev.KEY_P:          76,
	evdev.KEY_LEFTBRACE:  77,
	evdev.KEY_EQUAL:      78,
	evdev.KEY_RIGHTBRACE: 79,
	evdev.KEY_BACKSPACE:  80,
	evdev.KEY_BACKSLASH:  81,
}

// Octave shift range reachable with the arrow keys.
const (
	minOctaveShift = -2
	maxOctaveShift = 3
)

// Source is one grabbed keyboard device streaming note events. A single
// goroutine reads the device; notes land on the Events channel.
type Source struct {
	dev    *evdev.InputDevice
	name   string
	events chan Event

	// readLoop-only state.
	octave int
	held   map[uint16]uint8

	closing      atomic.Bool
	onDisconnect func(name string)
}

// Open grabs the event device at path and starts decoding it. onDisconnect
// is called (from the reader goroutine) if the device is lost; callers
// should use it to release all held keys.
func Open(path string, onDisconnect func(name string)) (*Source, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdev open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		_ = dev.File.Close()
		return nil, fmt.Errorf("grab %s: %w", path, err)
	}
	s := &Source{
		dev:          dev,
		name:         dev.Name,
		events:       make(chan Event, eventBufferSize),
		held:         make(map[uint16]uint8),
		onDisconnect: onDisconnect,
	}
	go s.readLoop()
	slog.Info("kbd: keyboard grabbed", "device", s.name, "path", path)
	return s, nil
}

func (s *Source) Name() string { return s.name }

// Events returns the buffered note stream.
func (s *Source) Events() <-chan Event { return s.events }

// Drain discards whatever is still queued, for use once the device is gone.
func (s *Source) Drain() {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

// Close releases the grab and stops the reader goroutine.
func (s *Source) Close() {
	s.closing.Store(true)
	_ = s.dev.Release()
	_ = s.dev.File.Close()
}

func (s *Source) readLoop() {
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			if s.closing.Load() {
				return
			}
			slog.Warn("kbd: keyboard lost", "device", s.name, "err", err)
			if s.onDisconnect != nil {
				s.onDisconnect(s.name)
			}
			return
		}
		if ev.Type != evdev.EV_KEY || ev.Value > 1 {
			continue // value 2 is autorepeat
		}
		s.handleKey(ev.Code, ev.Value == 1)
	}
}

func (s *Source) handleKey(code uint16, down bool) {
	switch code {
	case evdev.KEY_UP:
		if down && s.octave < maxOctaveShift {
			s.octave++
			slog.Info("kbd: octave shifted", "device", s.name, "octave", s.octave)
		}
		return
	case evdev.KEY_DOWN:
		if down && s.octave > minOctaveShift {
			s.octave--
			slog.Info("kbd: octave shifted", "device", s.name, "octave", s.octave)
		}
		return
	}

	if down {
		base, ok := noteByCode[code]
		if !ok {
			return
		}
		note := int(base) + 12*s.octave
		if note < 0 || note > 127 {
			return
		}
		if _, sounding := s.held[code]; sounding {
			return
		}
		// Remember the note actually sent so an octave shift mid-press
		// still releases the right one.
		s.held[code] = uint8(note)
		s.deliver(Event{Device: s.name, On: true, Note: uint8(note), Velocity: pressVelocity})
		return
	}

	note, ok := s.held[code]
	if !ok {
		return
	}
	delete(s.held, code)
	s.deliver(Event{Device: s.name, On: false, Note: note})
}

// deliver queues an event without ever blocking the reader.
func (s *Source) deliver(ev Event) {
	select {
	case s.events <- ev:
	default:
		slog.Warn("kbd: event buffer full, dropping", "device", s.name)
	}
}
