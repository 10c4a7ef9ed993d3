// Package stats tracks per-session monitor counters plus per-slave row
// counts for display in the dashboard status pane and the shutdown
// summary.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"xuimon/bytefmt"
)

// Tracker accumulates counters across polling cycles.
type Tracker struct {
	// slave counts live in sync.Map + atomic.Uint64 so row observations
	// don't fight the status renderer over a mutex
	slaveCounts sync.Map // slave id string -> *atomic.Uint64
	start       atomic.Int64
	cycles      atomic.Uint64
	rows        atomic.Uint64
	newRecords  atomic.Uint64
	changedRows atomic.Uint64
	upDelta     atomic.Uint64
	downDelta   atomic.Uint64
}

// NewTracker creates a tracker with the session clock started.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

// ObserveRow records one rendered row. Only strictly positive deltas
// accumulate into the observed traffic totals; negative deltas are
// counter resets, not traffic.
func (t *Tracker) ObserveRow(slaveID int64, newRecord, changed bool, upDelta, downDelta int64) {
	t.rows.Add(1)
	if newRecord {
		t.newRecords.Add(1)
	}
	if changed {
		t.changedRows.Add(1)
	}
	if upDelta > 0 {
		t.upDelta.Add(uint64(upDelta))
	}
	if downDelta > 0 {
		t.downDelta.Add(uint64(downDelta))
	}
	incrementCounter(&t.slaveCounts, fmt.Sprintf("%d", slaveID))
}

// CycleDone marks one completed polling cycle.
func (t *Tracker) CycleDone() {
	t.cycles.Add(1)
}

// Cycles returns the number of completed cycles.
func (t *Tracker) Cycles() uint64 {
	return t.cycles.Load()
}

// Rows returns the total number of rows rendered across all cycles.
func (t *Tracker) Rows() uint64 {
	return t.rows.Load()
}

// NewRecords returns how many rows were first sightings.
func (t *Tracker) NewRecords() uint64 {
	return t.newRecords.Load()
}

// ChangedRows returns how many rows were highlighted as changed.
func (t *Tracker) ChangedRows() uint64 {
	return t.changedRows.Load()
}

// UpDelta returns the sum of positive upload deltas observed.
func (t *Tracker) UpDelta() uint64 {
	return t.upDelta.Load()
}

// DownDelta returns the sum of positive download deltas observed.
func (t *Tracker) DownDelta() uint64 {
	return t.downDelta.Load()
}

// GetSlaveCounts returns a copy of per-slave row counts.
func (t *Tracker) GetSlaveCounts() map[string]uint64 {
	counts := make(map[string]uint64)
	t.slaveCounts.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

// GetUptime returns how long the tracker has been running.
func (t *Tracker) GetUptime() time.Duration {
	start := t.start.Load()
	return time.Since(time.Unix(0, start))
}

// Reset clears all counters and restarts the session clock.
func (t *Tracker) Reset() {
	t.slaveCounts.Range(func(key, _ any) bool {
		t.slaveCounts.Delete(key)
		return true
	})
	t.cycles.Store(0)
	t.rows.Store(0)
	t.newRecords.Store(0)
	t.changedRows.Store(0)
	t.upDelta.Store(0)
	t.downDelta.Store(0)
	t.start.Store(time.Now().UnixNano())
}

// SnapshotLines returns human-readable session stats ready for the
// status pane.
func (t *Tracker) SnapshotLines() []string {
	lines := make([]string, 0, 3)
	lines = append(lines, fmt.Sprintf("Cycles: %s | Rows: %s | New: %s | Changed: %s",
		humanize.Comma(int64(t.cycles.Load())),
		humanize.Comma(int64(t.rows.Load())),
		humanize.Comma(int64(t.newRecords.Load())),
		humanize.Comma(int64(t.changedRows.Load()))))
	lines = append(lines, fmt.Sprintf("Observed: ↑ +%s | ↓ +%s | Uptime: %s",
		bytefmt.Bytes(int64(t.upDelta.Load())),
		bytefmt.Bytes(int64(t.downDelta.Load())),
		t.GetUptime().Round(time.Second)))
	lines = append(lines, formatSlaveCounts("Rows by slave", t.GetSlaveCounts()))
	return lines
}

// SummaryLine returns the one-line session summary logged at shutdown.
func (t *Tracker) SummaryLine() string {
	return fmt.Sprintf("Session: %s cycles, %s rows (%s new, %s changed), ↑ +%s ↓ +%s observed in %s",
		humanize.Comma(int64(t.cycles.Load())),
		humanize.Comma(int64(t.rows.Load())),
		humanize.Comma(int64(t.newRecords.Load())),
		humanize.Comma(int64(t.changedRows.Load())),
		bytefmt.Bytes(int64(t.upDelta.Load())),
		bytefmt.Bytes(int64(t.downDelta.Load())),
		t.GetUptime().Round(time.Second))
}

func formatSlaveCounts(label string, counts map[string]uint64) string {
	var builder strings.Builder
	builder.WriteString(label)
	builder.WriteString(": ")
	if len(counts) == 0 {
		builder.WriteString("(none)")
		return builder.String()
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%s=%d", key, counts[key])
	}
	return builder.String()
}

func incrementCounter(m *sync.Map, key string) {
	if value, ok := m.Load(key); ok {
		value.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}
