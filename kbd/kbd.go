// Package kbd plays an ordinary keyboard as a two-row piano. The event
// device is grabbed exclusively, decoded key presses become note events,
// and the typed keys never reach the host directly. Requires Linux evdev;
// on other platforms Open fails.
package kbd

// Event is one decoded note-on or note-off from the grabbed keyboard.
type Event struct {
	Device   string
	On       bool
	Note     uint8
	Velocity uint8
}

// pressVelocity stands in for the velocity a keyboard cannot measure.
const pressVelocity = 127

// eventBufferSize is the backlog before presses are dropped with a warning.
const eventBufferSize = 64
