package engine

import "github.com/FugLong/miditohid/hid"

// appendReports serializes the tracked state into report snapshots appended
// to dst.
//
// With nothing pressed it emits the single all-released report, carrying
// only the held modifier-only mask. Otherwise the pressed sequence is split
// into maximal runs of consecutive entries sharing one per-key modifier
// value; each run becomes one report whose modifier byte is the run value
// OR-ed with the held mask and whose slots hold the run's keys in press
// order. A chord under a single modifier value therefore collapses to
// exactly one report, while mixed-modifier chords come out as a short burst
// of reports the host reads in order.
func appendReports(dst []hid.Report, keys []pressedKey, heldMods uint8) []hid.Report {
	if len(keys) == 0 {
		return append(dst, hid.Report{Mods: heldMods})
	}
	start := 0
	for i := 1; i <= len(keys); i++ {
		if i < len(keys) && keys[i].mods == keys[start].mods {
			continue
		}
		r := hid.Report{Mods: keys[start].mods | heldMods}
		slot := 0
		for _, k := range keys[start:i] {
			if k.key == 0 || slot == len(r.Keys) {
				continue
			}
			r.Keys[slot] = k.key
			slot++
		}
		dst = append(dst, r)
		start = i
	}
	return dst
}
