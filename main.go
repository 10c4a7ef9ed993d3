// Program xuimon polls the x-ui panel database for inbound traffic
// counters and renders per-cycle deltas, either as a plain console
// stream or as a tview dashboard on interactive terminals.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"xuimon/config"
	"xuimon/monitor"
	"xuimon/sqliteutil"
	"xuimon/stats"
	"xuimon/store"
	"xuimon/ui"

	"golang.org/x/term"
)

const (
	defaultConfigPath = "xuimon.yaml"
	envConfigPath     = "XUIMON_CONFIG"
	preflightTimeout  = 5 * time.Second
)

// uiSurface is the full contract main drives: the monitor's rendering
// surface plus the lifecycle hooks the concrete ui types provide.
type uiSurface interface {
	monitor.Surface
	WaitReady()
	Stop()
}

var (
	_ uiSurface = (*ui.Stream)(nil)
	_ uiSurface = (*ui.Dashboard)(nil)
)

func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Purpose: Resolve and load the runtime configuration.
// Key aspects: Environment override first, then the default path, then built-in defaults.
// Upstream: main startup.
// Downstream: config.Load and config.Default.
func loadMonitorConfig() (*config.Config, error) {
	path := defaultConfigPath
	fromEnv := false
	if env := strings.TrimSpace(os.Getenv(envConfigPath)); env != "" {
		path = env
		fromEnv = true
	}
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	// A missing file at the default path means the operator never wrote
	// one; run with defaults. A missing file named via the environment
	// is a mistake worth stopping for.
	if os.IsNotExist(err) && !fromEnv {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load %s: %w", path, err)
}

// Purpose: Print the database failure message with remediation steps.
// Key aspects: Goes to the product stream (stdout), not the log, so the
// operator sees it even with logging disabled.
// Upstream: main on preflight, open, or fetch failure.
// Downstream: sqliteutil.Hints.
func reportStoreFailure(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "\nDatabase error: %v\n", err)
	fmt.Fprintln(w, "Please make sure:")
	for _, hint := range sqliteutil.Hints(path) {
		fmt.Fprintln(w, hint)
	}
}

// Purpose: Wire config, logging, store, surface, and the polling loop.
// Key aspects: Database failures exit 1 with remediation hints; an
// interrupt is the clean path and exits 0 after one stop message.
// Upstream: Process entry.
// Downstream: All subsystem constructors and monitor.Run.
func main() {
	cfg, err := loadMonitorConfig()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	fanout, logErr := setupLogging(cfg.Logging, os.Stderr)
	log.SetFlags(0)
	log.SetOutput(fanout)
	if logErr != nil {
		log.Printf("Logging: file logging disabled: %v", logErr)
	}
	if cfg.LoadedFrom != "" {
		log.Printf("Config: loaded %s", cfg.LoadedFrom)
	} else {
		log.Printf("Config: no %s found, using built-in defaults", defaultConfigPath)
	}
	cfg.Print()

	res, err := sqliteutil.Preflight(cfg.Database.Path, preflightTimeout)
	if err != nil {
		reportStoreFailure(os.Stdout, cfg.Database.Path, err)
		_ = fanout.Close()
		os.Exit(1)
	}
	log.Printf("Store: preflight ok (%s)", res.Elapsed.Round(time.Millisecond))

	st, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeoutMS)
	if err != nil {
		reportStoreFailure(os.Stdout, cfg.Database.Path, err)
		_ = fanout.Close()
		os.Exit(1)
	}

	colorEnabled := isStdoutTTY()
	if cfg.UI.Color != nil {
		colorEnabled = *cfg.UI.Color
	}

	var surface uiSurface
	var dash *ui.Dashboard
	if cfg.UI.Mode == config.ModeDashboard && isStdoutTTY() {
		dash = ui.NewDashboard()
		fanout.SetConsoleSink(dash.SystemWriter(), true)
		surface = dash
	} else {
		surface = ui.NewStream(os.Stdout, colorEnabled, fanout)
	}

	tracker := stats.NewTracker()
	mon := monitor.New(st, surface, tracker, monitor.Options{
		DBPath:   cfg.Database.Path,
		Interval: cfg.Interval(),
	})

	surface.WaitReady()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- mon.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Monitor: received signal %v, shutting down", sig)
		cancel()
		<-errCh
		surface.Notice("\n\nMonitor stopped")
		surface.Stop()
		if dash != nil {
			fanout.SetConsoleSink(os.Stderr, true)
		}
		_ = st.Close()
		log.Printf("Monitor: %s", tracker.SummaryLine())
		_ = fanout.Close()

	case err := <-errCh:
		cancel()
		surface.Stop()
		if dash != nil {
			fanout.SetConsoleSink(os.Stderr, true)
		}
		_ = st.Close()
		if err == nil {
			log.Printf("Monitor: %s", tracker.SummaryLine())
			_ = fanout.Close()
			return
		}
		var accessErr *store.AccessError
		if errors.As(err, &accessErr) {
			reportStoreFailure(os.Stdout, cfg.Database.Path, err)
		} else {
			fmt.Fprintf(os.Stdout, "\nUnexpected error: %v\n", err)
		}
		log.Printf("Monitor: aborted: %v", err)
		_ = fanout.Close()
		os.Exit(1)
	}
}
