package engine

import (
	"log/slog"
	"time"

	"github.com/FugLong/miditohid/hid"
	"github.com/FugLong/miditohid/keymap"
)

// Sink consumes finished report snapshots. Send failures are logged and
// dropped; the engine never retries a report because the next state change
// supersedes it anyway.
type Sink interface {
	Send(hid.Report) error
}

// NoteEvent is one decoded note-on or note-off from an input device. All
// channels are treated alike, so only the note number and velocity travel
// with the event.
type NoteEvent struct {
	Device   string
	On       bool
	Note     uint8
	Velocity uint8
}

// Engine composes the profile store, pressed-key tracker, and release
// scheduler behind the two entry points the driver loop calls: HandleNote
// and Tick.
type Engine struct {
	store   *keymap.Store
	track   tracker
	sched   scheduler
	sink    Sink
	scratch []hid.Report
}

func New(store *keymap.Store, sink Sink) *Engine {
	return &Engine{
		store:   store,
		sink:    sink,
		scratch: make([]hid.Report, 0, hid.NumSlots+1),
	}
}

// HandleNote processes one note event to completion: state mutation plus
// report emission, atomically as far as any outside observer can tell. A
// note-on with velocity 0 is the note-off it is on the wire.
func (e *Engine) HandleNote(ev NoteEvent, now time.Time) {
	if int(ev.Note) >= keymap.NumNotes {
		slog.Warn("engine: note out of range", "device", ev.Device, "note", ev.Note)
		return
	}
	on := ev.On && ev.Velocity > 0

	// The switch note is consumed before any mapping lookup and never falls
	// through to regular handling.
	if on && e.isSwitchNote(ev.Note) {
		e.switchProfile()
		return
	}

	prof := e.store.Active()
	m := prof.Lookup(ev.Note)
	if m.IsZero() {
		slog.Debug("engine: unmapped note", "device", ev.Device, "note", ev.Note)
		return
	}

	if m.ModifierOnly() {
		if on {
			e.track.pressMods(m.Mods)
		} else {
			e.track.releaseMods(m.Mods)
		}
		slog.Debug("engine: modifier", "device", ev.Device, "note", ev.Note, "mapping", m.String(), "on", on)
		e.emit()
		return
	}

	switch {
	case on && prof.FastPress && prof.PressDuration == 0:
		// Tap: press and release back-to-back, one report each.
		e.track.add(m.Key, m.Mods)
		e.emit()
		e.track.remove(m.Key, m.Mods)
		e.emit()
	case on && prof.FastPress:
		if !e.track.add(m.Key, m.Mods) {
			slog.Debug("engine: press dropped", "note", ev.Note, "mapping", m.String(), "pressed", e.track.n)
		}
		e.emit()
		if !e.sched.schedule(m.Key, m.Mods, now.Add(prof.PressDuration)) {
			slog.Debug("engine: release timer table full", "note", ev.Note, "mapping", m.String())
		}
	case on:
		if !e.track.add(m.Key, m.Mods) {
			slog.Debug("engine: press dropped", "note", ev.Note, "mapping", m.String(), "pressed", e.track.n)
		}
		e.emit()
	case prof.FastPress:
		// Note-off carries no meaning in fast-press mode; the scheduler
		// owns every release.
	default:
		e.track.remove(m.Key, m.Mods)
		e.emit()
	}
}

// Tick releases every fast-press key whose deadline has passed, in deadline
// order, emitting after each release.
func (e *Engine) Tick(now time.Time) {
	for {
		key, mods, ok := e.sched.popDue(now)
		if !ok {
			return
		}
		e.track.remove(key, mods)
		e.emit()
	}
}

// ReleaseAll clears everything held and sends the all-released report. Used
// on input device loss, profile reload, and shutdown so no key stays stuck
// on the host.
func (e *Engine) ReleaseAll() {
	e.track.clear()
	e.sched.clear()
	e.emit()
}

// SetStore swaps in a freshly loaded profile store and releases everything
// held under the old one.
func (e *Engine) SetStore(st *keymap.Store) {
	e.store = st
	e.ReleaseAll()
}

// SwitchProfile rotates to the next profile, same as the configured switch
// note would. Used for operator-requested switches.
func (e *Engine) SwitchProfile() { e.switchProfile() }

func (e *Engine) isSwitchNote(note uint8) bool {
	sn := e.store.SwitchNote()
	return sn != keymap.SwitchDisabled && note == sn
}

// switchProfile advances the store and starts the new profile from a clean
// slate: everything held is released and the all-clear report goes out
// before any note resolves against the new table.
func (e *Engine) switchProfile() {
	from, to, ok := e.store.SwitchNext()
	if !ok {
		slog.Warn("engine: profile switch requested but only one profile is loaded")
		return
	}
	e.track.clear()
	e.sched.clear()
	e.emit()
	slog.Info("engine: profile switched", "from", from, "to", to, "index", e.store.ActiveIndex())
}

func (e *Engine) emit() {
	e.scratch = appendReports(e.scratch[:0], e.track.pressed(), e.track.heldMods)
	for _, r := range e.scratch {
		if err := e.sink.Send(r); err != nil {
			slog.Error("engine: report send failed", "report", r.String(), "err", err)
		}
	}
}

// PressedKey is one tracked press in a Status snapshot.
type PressedKey struct {
	Key  uint8
	Mods uint8
}

// Status is a copy of the engine's observable state. It shares nothing with
// the engine and may safely cross goroutines.
type Status struct {
	Profile         string
	ProfileIndex    int
	ProfileCount    int
	Profiles        []string
	Pressed         []PressedKey
	HeldMods        uint8
	PendingReleases int
}

func (e *Engine) Status() Status {
	pressed := make([]PressedKey, e.track.n)
	for i, k := range e.track.pressed() {
		pressed[i] = PressedKey{Key: k.key, Mods: k.mods}
	}
	return Status{
		Profile:         e.store.Active().Name,
		ProfileIndex:    e.store.ActiveIndex(),
		ProfileCount:    e.store.Count(),
		Profiles:        e.store.Names(),
		Pressed:         pressed,
		HeldMods:        e.track.heldMods,
		PendingReleases: e.sched.pending(),
	}
}
