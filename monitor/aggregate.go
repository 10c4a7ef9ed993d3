package monitor

import "xuimon/inbound"

// Totals sums the up and down counters across one snapshot. Absent
// counters count as zero, so the totals are always defined.
func Totals(snap inbound.Snapshot) (up, down int64) {
	for _, rec := range snap {
		if rec.Up.Valid {
			up += rec.Up.Int64
		}
		if rec.Down.Valid {
			down += rec.Down.Int64
		}
	}
	return up, down
}
