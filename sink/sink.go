// Package sink holds the report consumers: a structured-log sink for dry
// runs, a serial framing sink for a microcontroller bridge, a uinput sink
// that types into the local kernel, and a recorder that taps the stream
// for the status display.
package sink

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/FugLong/miditohid/hid"
)

// Sink is the write side every report consumer implements.
type Sink interface {
	Send(hid.Report) error
}

// Log prints every report through the structured logger instead of sending
// it anywhere. The zero value is ready to use.
type Log struct{}

func (Log) Send(r hid.Report) error {
	if r.IsZero() {
		slog.Info("sink: all released")
		return nil
	}
	var names []string
	for _, k := range r.Keys {
		if k != 0 {
			names = append(names, hid.KeyName(k))
		}
	}
	slog.Info("sink: report", "mods", hid.ModNames(r.Mods), "keys", strings.Join(names, " "))
	return nil
}

// recorderDepth is how many recent reports the ring keeps.
const recorderDepth = 32

// Recorder forwards every report to the next sink while keeping the most
// recent ones in a ring for the status display.
type Recorder struct {
	mu   sync.Mutex
	next Sink
	ring [recorderDepth]hid.Report
	seq  uint64
}

func NewRecorder(next Sink) *Recorder { return &Recorder{next: next} }

func (rc *Recorder) Send(r hid.Report) error {
	rc.mu.Lock()
	rc.ring[rc.seq%recorderDepth] = r
	rc.seq++
	rc.mu.Unlock()
	return rc.next.Send(r)
}

// Sent returns the total number of reports that have passed through.
func (rc *Recorder) Sent() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.seq
}

// Recent returns up to max of the latest reports, newest first.
func (rc *Recorder) Recent(max int) []hid.Report {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	n := recorderDepth
	if rc.seq < uint64(n) {
		n = int(rc.seq)
	}
	if max < n {
		n = max
	}
	out := make([]hid.Report, n)
	for i := 0; i < n; i++ {
		out[i] = rc.ring[(rc.seq-1-uint64(i))%recorderDepth]
	}
	return out
}
