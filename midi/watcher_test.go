package midi

import "testing"

func TestAcceptableExcludesVirtualPorts(t *testing.T) {
	w := &Watcher{exclude: DefaultExcludedPatterns}
	cases := []struct {
		name string
		want bool
	}{
		{"Launchkey Mini MK3 28:0", true},
		{"Midi Through 14:0", false},
		{"midi through port-0", false},
		{"VirMIDI Dummy", false},
		{"WIDI Master", true},
	}
	for _, tc := range cases {
		if got := w.acceptable(tc.name); got != tc.want {
			t.Errorf("acceptable(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAcceptablePreferNarrows(t *testing.T) {
	w := &Watcher{
		prefer:  []string{"Launchkey"},
		exclude: DefaultExcludedPatterns,
	}
	if !w.acceptable("Launchkey Mini MK3 28:0") {
		t.Error("preferred device rejected")
	}
	if w.acceptable("Arturia KeyStep 32:0") {
		t.Error("non-preferred device accepted while prefer patterns are set")
	}
	// Exclusion wins even over a prefer match.
	if w.acceptable("Launchkey Through Port") {
		t.Error("excluded device accepted via prefer pattern")
	}
}

func TestPortDeliverNeverBlocks(t *testing.T) {
	p := &Port{name: "test", events: make(chan Event, 2)}
	p.deliver(Event{Note: 1})
	p.deliver(Event{Note: 2})
	p.deliver(Event{Note: 3}) // buffer full, dropped

	if len(p.events) != 2 {
		t.Fatalf("buffered %d events, want 2", len(p.events))
	}
	if ev := <-p.events; ev.Note != 1 {
		t.Errorf("first event note = %d, want 1 (oldest kept)", ev.Note)
	}
}

func TestPortDrainDiscardsBacklog(t *testing.T) {
	p := &Port{name: "test", events: make(chan Event, 4)}
	p.deliver(Event{Port: "test", On: true, Note: 60, Velocity: 90})
	p.deliver(Event{Port: "test", On: true, Note: 62, Velocity: 90})

	p.Drain()

	select {
	case ev := <-p.Events():
		t.Fatalf("drained port still queued %+v", ev)
	default:
	}
}
