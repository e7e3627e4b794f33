//go:build linux

package sink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FugLong/miditohid/hid"
)

func report(mods uint8, keys ...uint8) hid.Report {
	r := hid.Report{Mods: mods}
	copy(r.Keys[:], keys)
	return r
}

func TestReportDiffPressFromIdle(t *testing.T) {
	ups, downs := reportDiff(hid.Report{}, report(hid.ModLeftShift, hid.KeyH))
	require.Empty(t, ups)
	// Shift must be down before H.
	require.Equal(t, []int{42, 35}, downs)
}

func TestReportDiffReleaseToIdle(t *testing.T) {
	ups, downs := reportDiff(report(hid.ModLeftShift, hid.KeyH), hid.Report{})
	// H must come up before shift.
	require.Equal(t, []int{35, 42}, ups)
	require.Empty(t, downs)
}

func TestReportDiffIdenticalSnapshots(t *testing.T) {
	r := report(hid.ModLeftCtrl, hid.KeyA, hid.KeyB)
	ups, downs := reportDiff(r, r)
	require.Empty(t, ups)
	require.Empty(t, downs)
}

func TestReportDiffSlotShuffleIsNoOp(t *testing.T) {
	// The same held set in different slots must not retrigger anything.
	ups, downs := reportDiff(
		report(0, hid.KeyA, hid.KeyB),
		report(0, hid.KeyB, hid.KeyA),
	)
	require.Empty(t, ups)
	require.Empty(t, downs)
}

func TestReportDiffKeySwap(t *testing.T) {
	ups, downs := reportDiff(
		report(0, hid.KeyA),
		report(0, hid.KeyB),
	)
	require.Equal(t, []int{30}, ups, "A released")
	require.Equal(t, []int{48}, downs, "B pressed")
}

func TestEveryUsageHasALinuxCode(t *testing.T) {
	// The parser vocabulary and the uinput table must stay in lockstep,
	// otherwise a mapping would silently type nothing.
	for code := uint8(hid.KeyA); code <= hid.KeyUp; code++ {
		if code == 0x32 || (code > hid.KeyF12 && code < hid.KeyHome) {
			continue // gaps in the supported vocabulary
		}
		if _, ok := linuxKeyByUsage[code]; !ok {
			t.Errorf("usage 0x%02X (%s) has no Linux key code", code, hid.KeyName(code))
		}
	}
}
