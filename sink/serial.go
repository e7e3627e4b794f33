package sink

import (
	"fmt"
	"log/slog"

	"go.bug.st/serial"

	"github.com/FugLong/miditohid/hid"
)

// Wire constants for the microcontroller bridge protocol. Each report
// travels as one framed bulk transfer the firmware applies atomically.
const (
	SOF0         = 0xAA
	SOF1         = 0x55
	CmdKeyReport = 0x20
)

// EncodeReport builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][mods][reserved][key0..5][CKS]
//
// The payload mirrors the 8-byte boot keyboard report layout. LEN counts
// the CMD byte plus the payload; CKS is the XOR of everything after the
// start marker.
func EncodeReport(r hid.Report) []byte {
	payload := make([]byte, 0, 8)
	payload = append(payload, r.Mods, 0x00)
	payload = append(payload, r.Keys[:]...)

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ CmdKeyReport
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdKeyReport}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// Serial frames reports onto a serial port for a downstream
// microcontroller that performs the actual USB keyboard presentation.
type Serial struct {
	port serial.Port
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*Serial, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", name, err)
	}
	slog.Info("serial: port opened", "device", name, "baud", baud)
	return &Serial{port: p}, nil
}

func (s *Serial) Send(r hid.Report) error {
	data := EncodeReport(r)
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	slog.Debug("serial: report sent", "bytes", n)
	return nil
}

// Close closes the underlying serial port.
func (s *Serial) Close() {
	slog.Info("serial: closing port")
	_ = s.port.Close()
}
