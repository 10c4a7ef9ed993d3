package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Dashboard renders the monitor as a full-screen layout: the static
// header, the current cycle's rows, session stats, and a system log
// pane. The cycle pane is replaced wholesale once per cycle so the rows
// read like a refreshing table instead of a scrolling feed.
type Dashboard struct {
	app        *tview.Application
	headerView *tview.TextView
	cycleView  *tview.TextView
	statusView *tview.TextView
	systemView *tview.TextView
	pending    []string
	paneMu     sync.Mutex
	closed     atomic.Bool
	ready      chan struct{}
}

// NewDashboard builds the layout and starts the tview event loop.
// Callers gate construction on an interactive terminal.
func NewDashboard() *Dashboard {
	makePane := func(title string) *tview.TextView {
		tv := tview.NewTextView().
			SetDynamicColors(true).
			SetWrap(false)
		if title != "" {
			tv.SetTitle(title).SetTitleAlign(tview.AlignLeft)
		}
		return tv
	}

	header := makePane("")
	cycle := makePane("Inbound Traffic")
	status := makePane("Session")
	status.SetTextColor(tcell.ColorYellow)
	system := makePane("System")
	system.SetTextColor(tcell.ColorYellow)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 8, 0, false).
		AddItem(cycle, 0, 1, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(status, 4, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(system, 6, 0, false)

	app := tview.NewApplication().SetRoot(layout, true).EnableMouse(false)
	ready := make(chan struct{})
	var once sync.Once
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		once.Do(func() { close(ready) })
		return false
	})

	d := &Dashboard{
		app:        app,
		headerView: header,
		cycleView:  cycle,
		statusView: status,
		systemView: system,
		ready:      ready,
	}

	go func() {
		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		}
	}()

	return d
}

// WaitReady blocks until the first draw so startup log lines don't race
// the screen takeover.
func (d *Dashboard) WaitReady() {
	if d == nil || d.ready == nil {
		return
	}
	<-d.ready
}

func (d *Dashboard) Stop() {
	if d == nil || d.app == nil {
		return
	}
	d.closed.Store(true)
	d.app.Stop()
}

func (d *Dashboard) SetHeader(lines []string) {
	d.setPane(d.headerView, lines)
}

// BeginCycle starts buffering a new cycle; the visible pane keeps the
// previous cycle until EndCycle swaps the finished block in.
func (d *Dashboard) BeginCycle(lines []string) {
	if d == nil {
		return
	}
	d.paneMu.Lock()
	d.pending = d.pending[:0]
	// The leading blank and trailing rule read fine in a stream but
	// waste rows in a fixed pane.
	for _, line := range lines {
		if line != "" {
			d.pending = append(d.pending, line)
		}
	}
	d.paneMu.Unlock()
}

func (d *Dashboard) AppendRow(line string) {
	if d == nil {
		return
	}
	d.paneMu.Lock()
	d.pending = append(d.pending, line)
	d.paneMu.Unlock()
}

func (d *Dashboard) EndCycle(lines []string) {
	if d == nil {
		return
	}
	d.paneMu.Lock()
	for _, line := range lines {
		if line != "" {
			d.pending = append(d.pending, line)
		}
	}
	text := strings.Join(d.pending, "\n")
	d.paneMu.Unlock()

	if d.closed.Load() || d.app == nil {
		return
	}
	d.app.QueueUpdateDraw(func() {
		d.cycleView.SetText(text)
	})
}

func (d *Dashboard) SetStatus(lines []string) {
	d.setPane(d.statusView, lines)
}

// Notice routes stop/info messages into the system pane with a
// timestamp, matching the log line format.
func (d *Dashboard) Notice(line string) {
	if d == nil {
		return
	}
	line = strings.TrimLeft(line, "\n")
	if line == "" {
		return
	}
	w := d.SystemWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", time.Now().UTC().Format("2006/01/02 15:04:05"), line)
}

// SystemWriter returns an io.Writer that appends log output to the
// system pane; main points the log fanout's console sink here while the
// dashboard owns the terminal.
func (d *Dashboard) SystemWriter() *paneWriter {
	if d == nil {
		return nil
	}
	return &paneWriter{view: d.systemView, app: d.app, closed: &d.closed}
}

func (d *Dashboard) setPane(view *tview.TextView, lines []string) {
	if d == nil || view == nil {
		return
	}
	text := strings.Join(lines, "\n")
	if d.closed.Load() || d.app == nil {
		return
	}
	d.app.QueueUpdateDraw(func() {
		view.SetText(text)
	})
}

type paneWriter struct {
	view   *tview.TextView
	app    *tview.Application
	closed *atomic.Bool
}

func (w *paneWriter) Write(p []byte) (int, error) {
	if w == nil || w.view == nil {
		return len(p), nil
	}
	if w.closed != nil && w.closed.Load() {
		return len(p), nil
	}
	text := string(p)
	if w.app == nil {
		fmt.Fprint(w.view, text)
		return len(p), nil
	}
	w.app.QueueUpdateDraw(func() {
		fmt.Fprint(w.view, text)
		w.view.ScrollToEnd()
	})
	return len(p), nil
}
