package sink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FugLong/miditohid/hid"
)

func TestEncodeReport(t *testing.T) {
	r := hid.Report{Mods: hid.ModLeftShift}
	r.Keys[0] = hid.KeyH

	got := EncodeReport(r)
	want := []byte{
		0xAA, 0x55, // start of frame
		0x09, // LEN: CMD + 8-byte payload
		0x20, // CmdKeyReport
		0x02, 0x00, // mods, reserved
		0x0B, 0x00, 0x00, 0x00, 0x00, 0x00, // key slots
		0x20, // XOR of LEN..payload
	}
	require.Equal(t, want, got)
}

func TestEncodeReportAllClear(t *testing.T) {
	got := EncodeReport(hid.Report{})
	want := []byte{
		0xAA, 0x55, 0x09, 0x20,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x29,
	}
	require.Equal(t, want, got)
	require.Len(t, got, 13, "frame length is fixed")
}
