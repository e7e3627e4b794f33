package hid

import (
	"fmt"
	"strings"
)

// NumSlots is the key-slot capacity of one boot-protocol keyboard report,
// and therefore the ceiling on simultaneously pressed keys the translator
// can represent.
const NumSlots = 6

// Report is one full keyboard snapshot: the modifier byte plus up to six
// pressed key usage IDs. Reports are always sent whole, never as deltas; the
// zero value is the all-released report.
type Report struct {
	Mods uint8
	Keys [NumSlots]uint8
}

// IsZero reports whether r is the all-released report.
func (r Report) IsZero() bool { return r == Report{} }

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mods=0x%02X keys=[", r.Mods)
	first := true
	for _, k := range r.Keys {
		if k == 0 {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", k)
		first = false
	}
	b.WriteByte(']')
	return b.String()
}
