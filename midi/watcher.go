// Package midi keeps every acceptable MIDI input connected and decodes its
// note traffic into buffered per-port event streams. Hot-plug and
// hot-unplug are handled by a periodic rescan; each connected port feeds
// its own channel so the driver loop can drain devices fairly.
package midi

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// DefaultExcludedPatterns are virtual/system ports that are never
// auto-connected.
var DefaultExcludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

const rescanInterval = 1000 * time.Millisecond

// eventBufferSize is the per-port event backlog. Notes are dropped with a
// warning once a port falls this far behind, rather than blocking the
// MIDI driver's callback goroutine.
const eventBufferSize = 64

// Event is one decoded note-on or note-off from a connected port.
type Event struct {
	Port     string
	On       bool
	Note     uint8
	Velocity uint8
}

// Port is one open MIDI input. Its event channel is fed by the driver's
// listener goroutine and drained by the main loop.
type Port struct {
	name   string
	in     drivers.In
	stop   func()
	events chan Event
}

func (p *Port) Name() string { return p.name }

// Events returns the port's buffered note stream.
func (p *Port) Events() <-chan Event { return p.events }

// Drain discards whatever is still queued, for use once the device is gone.
func (p *Port) Drain() {
	for {
		select {
		case <-p.events:
		default:
			return
		}
	}
}

// Watcher monitors available MIDI inputs and keeps a connection open to
// every acceptable one. It handles hot-plug (new device appears) and
// hot-unplug (device disappears) transparently.
//
// onDisconnect is called (from a goroutine) whenever a connected device is
// lost; callers should use it to release all held keys immediately.
type Watcher struct {
	mu           sync.Mutex
	drv          *rtmididrv.Driver
	ports        map[string]*Port
	prefer       []string
	exclude      []string
	lastRescanAt time.Time

	onDisconnect func(name string)
}

// NewWatcher creates a watcher and initialises the underlying rtmidi
// driver. Devices matching an exclude pattern are never connected; when
// prefer patterns are given, only matching devices are. Call Close when
// done.
func NewWatcher(prefer, exclude []string, onDisconnect func(name string)) (*Watcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Watcher{
		drv:          drv,
		ports:        make(map[string]*Port),
		prefer:       prefer,
		exclude:      exclude,
		onDisconnect: onDisconnect,
	}, nil
}

// Close shuts down every open port and the rtmidi driver.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, p := range w.ports {
		w.closePort(p)
		delete(w.ports, name)
	}
	w.drv.Close()
}

// Ports returns the connected ports in name order. The slice is a snapshot;
// the ports themselves stay live.
func (w *Watcher) Ports() []*Port {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Port, 0, len(w.ports))
	for _, p := range w.ports {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Names returns the connected device names in order.
func (w *Watcher) Names() []string {
	ports := w.Ports()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.name
	}
	return names
}

// Tick should be called on a regular interval (e.g. every second) from the
// main loop. It scans for devices, connects new acceptable ones, and
// detects disappearances.
func (w *Watcher) Tick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < rescanInterval {
		return
	}
	w.lastRescanAt = now

	inputs := w.listInputs()
	present := make(map[string]bool, len(inputs))
	for _, name := range inputs {
		present[name] = true
	}

	// Reap ports whose device disappeared.
	for name, p := range w.ports {
		if present[name] {
			continue
		}
		slog.Warn("midi: device disappeared", "device", name)
		w.closePort(p)
		delete(w.ports, name)
		w.lastRescanAt = time.Time{} // rescan immediately next tick
		if w.onDisconnect != nil {
			go w.onDisconnect(name)
		}
	}

	// Connect anything new.
	for _, name := range inputs {
		if _, ok := w.ports[name]; ok {
			continue
		}
		if err := w.openByName(name); err != nil {
			slog.Error("midi: connect failed", "device", name, "err", err)
		}
	}
}

// listInputs enumerates acceptable input names: not excluded, and matching
// a prefer pattern when any are configured.
func (w *Watcher) listInputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		slog.Error("midi: list inputs failed", "err", err)
		return nil
	}
	var names []string
	for _, in := range ins {
		name := in.String()
		if !w.acceptable(name) {
			slog.Debug("midi: input skipped", "device", name)
			continue
		}
		names = append(names, name)
	}
	slog.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func (w *Watcher) acceptable(name string) bool {
	for _, pat := range w.exclude {
		if containsCI(name, pat) {
			return false
		}
	}
	if len(w.prefer) == 0 {
		return true
	}
	for _, pat := range w.prefer {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func (w *Watcher) closePort(p *Port) {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	if p.in != nil {
		_ = p.in.Close()
		p.in = nil
	}
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	port := &Port{
		name:   name,
		in:     found,
		events: make(chan Event, eventBufferSize),
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			slog.Debug("midi: note on", "device", name, "ch", ch, "key", key, "vel", vel)
			port.deliver(Event{Port: name, On: true, Note: key, Velocity: vel})
		case msg.GetNoteEnd(&ch, &key):
			slog.Debug("midi: note off", "device", name, "ch", ch, "key", key)
			port.deliver(Event{Port: name, On: false, Note: key})
		default:
			slog.Debug("midi: unhandled message", "device", name, "msg", msg.String())
		}
	}, midi.HandleError(func(listenErr error) {
		slog.Warn("midi: listener error", "device", name, "err", listenErr)
		// Must not tear the port down from within the listener goroutine,
		// so dispatch to a new goroutine and re-acquire the mutex.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.ports[name] != port {
				return
			}
			w.closePort(port)
			delete(w.ports, name)
			w.lastRescanAt = time.Time{} // trigger immediate rescan
			if w.onDisconnect != nil {
				go w.onDisconnect(name)
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	port.stop = stop
	w.ports[name] = port
	slog.Info("midi: connected", "device", name)
	return nil
}

// deliver queues an event without ever blocking the MIDI driver's callback.
func (p *Port) deliver(ev Event) {
	select {
	case p.events <- ev:
	default:
		slog.Warn("midi: event buffer full, dropping", "device", p.name)
	}
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
