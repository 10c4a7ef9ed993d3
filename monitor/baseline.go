package monitor

import (
	"database/sql"

	"xuimon/inbound"
)

type observation struct {
	up   sql.NullInt64
	down sql.NullInt64
}

// Baseline is the previous-value cache: the last observed counter pair
// for every inbound id ever seen this session. Entries are never
// evicted, ids that drop out of later snapshots simply stop being
// referenced. Owned by the polling loop; not safe for concurrent use.
type Baseline struct {
	seen map[int64]observation
}

func NewBaseline() *Baseline {
	return &Baseline{seen: make(map[int64]observation)}
}

// Delta describes how one record moved since the previous cycle.
type Delta struct {
	New     bool  // id had no cached observation before this cycle
	Up      int64
	Down    int64
	Changed bool // at least one delta is strictly positive
}

// Diff classifies rec against the cached observation for its id. A
// per-direction delta is computed only when both the current and the
// cached counter are present and non-zero; otherwise that direction
// contributes zero. A genuine 0-to-N transition therefore shows +0 for
// its first moving cycle. Counters that reset downward produce negative
// deltas, which render but never count as changed.
func (b *Baseline) Diff(rec inbound.Record) Delta {
	prev, ok := b.seen[rec.ID]
	if !ok {
		return Delta{New: true}
	}
	var d Delta
	if truthy(rec.Up) && truthy(prev.up) {
		d.Up = rec.Up.Int64 - prev.up.Int64
	}
	if truthy(rec.Down) && truthy(prev.down) {
		d.Down = rec.Down.Int64 - prev.down.Int64
	}
	d.Changed = d.Up > 0 || d.Down > 0
	return d
}

// Observe stores rec's counters as the new cached observation for its
// id. The overwrite is unconditional: NULL and zero counters are cached
// too, so the next cycle compares against the latest real read.
func (b *Baseline) Observe(rec inbound.Record) {
	b.seen[rec.ID] = observation{up: rec.Up, down: rec.Down}
}

// Len reports how many distinct ids have ever been observed.
func (b *Baseline) Len() int {
	return len(b.seen)
}

func truthy(v sql.NullInt64) bool {
	return v.Valid && v.Int64 != 0
}
