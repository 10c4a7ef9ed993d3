// Package monitor drives the polling loop: fetch a snapshot, diff it
// against the previous-value cache, render one block of lines per
// cycle, and wait out the interval until the context is canceled.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"xuimon/inbound"
	"xuimon/stats"
)

// Fetcher supplies one ordered snapshot per cycle.
type Fetcher interface {
	FetchInbounds(ctx context.Context) (inbound.Snapshot, error)
}

// Surface receives rendered output. Implementations decide how lines
// reach the operator; the loop never formats differently per surface.
type Surface interface {
	SetHeader(lines []string)
	BeginCycle(lines []string)
	AppendRow(line string)
	EndCycle(lines []string)
	SetStatus(lines []string)
	Notice(line string)
}

// Options configures a Monitor. The zero value is not usable; main
// fills it from config.
type Options struct {
	DBPath   string
	Interval time.Duration
}

// Monitor owns the loop state: the previous-value cache and the cycle
// counter. Single-threaded; Run is the only entry point.
type Monitor struct {
	fetcher  Fetcher
	surface  Surface
	tracker  *stats.Tracker
	dbPath   string
	interval time.Duration
	baseline *Baseline
	cycle    uint64
	now      func() time.Time
}

func New(fetcher Fetcher, surface Surface, tracker *stats.Tracker, opts Options) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{
		fetcher:  fetcher,
		surface:  surface,
		tracker:  tracker,
		dbPath:   opts.DBPath,
		interval: interval,
		baseline: NewBaseline(),
		now:      time.Now,
	}
}

// Run prints the static header and polls until ctx is canceled. A
// canceled context is the clean stop path and returns nil; any fetch
// error aborts the loop and propagates to the caller unretried.
func (m *Monitor) Run(ctx context.Context) error {
	m.surface.SetHeader(m.headerLines(m.now()))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := m.runCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle executes one fetch-diff-render pass. The cycle header goes
// out before the fetch, so a fatal store error is preceded by the
// header of the cycle that hit it.
func (m *Monitor) runCycle(ctx context.Context) error {
	m.cycle++
	m.surface.BeginCycle([]string{
		"",
		fmt.Sprintf("[%s] check #%d:", m.now().Format("15:04:05"), m.cycle),
		rule("-"),
	})

	snap, err := m.fetcher.FetchInbounds(ctx)
	if err != nil {
		return err
	}

	for _, rec := range snap {
		d := m.baseline.Diff(rec)
		m.baseline.Observe(rec)
		m.surface.AppendRow(renderRow(rec, d))
		if m.tracker != nil {
			m.tracker.ObserveRow(rec.SlaveID, d.New, d.Changed, d.Up, d.Down)
		}
	}

	m.surface.EndCycle([]string{rule("-"), totalsLine(snap)})

	if m.tracker != nil {
		m.tracker.CycleDone()
		m.surface.SetStatus(m.tracker.SnapshotLines())
	}
	return nil
}

// Cycles reports how many cycles have started.
func (m *Monitor) Cycles() uint64 {
	return m.cycle
}

func (m *Monitor) headerLines(start time.Time) []string {
	return []string{
		"Tip: press Ctrl+C to stop the monitor",
		"",
		"=== X-UI Traffic Monitor ===",
		"Database: " + m.dbPath,
		fmt.Sprintf("Update interval: %s", m.interval),
		fmt.Sprintf("Started: %s", start.Format("2006-01-02 15:04:05")),
		rule("="),
		"",
	}
}
