package sink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FugLong/miditohid/hid"
)

type countingSink struct {
	got []hid.Report
}

func (c *countingSink) Send(r hid.Report) error {
	c.got = append(c.got, r)
	return nil
}

func numbered(n uint8) hid.Report {
	r := hid.Report{}
	r.Keys[0] = n
	return r
}

func TestRecorderForwards(t *testing.T) {
	next := &countingSink{}
	rc := NewRecorder(next)

	require.NoError(t, rc.Send(numbered(1)))
	require.NoError(t, rc.Send(numbered(2)))
	require.Equal(t, []hid.Report{numbered(1), numbered(2)}, next.got)
	require.EqualValues(t, 2, rc.Sent())
}

func TestRecorderRecentNewestFirst(t *testing.T) {
	rc := NewRecorder(&countingSink{})
	for i := uint8(1); i <= 5; i++ {
		_ = rc.Send(numbered(i))
	}
	require.Equal(t, []hid.Report{numbered(5), numbered(4), numbered(3)}, rc.Recent(3))
	require.Empty(t, NewRecorder(&countingSink{}).Recent(3))
}

func TestRecorderRingWraps(t *testing.T) {
	rc := NewRecorder(&countingSink{})
	for i := 0; i < recorderDepth+4; i++ {
		_ = rc.Send(numbered(uint8(i + 1)))
	}
	recent := rc.Recent(recorderDepth + 10)
	require.Len(t, recent, recorderDepth, "ring holds at most its depth")
	require.Equal(t, numbered(uint8(recorderDepth+4)), recent[0], "newest survives the wrap")
}
