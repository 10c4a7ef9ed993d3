package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"xuimon/config"
)

func TestLogFileNameForDate(t *testing.T) {
	when := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	if got := logFileNameForDate(when); got != "07-Mar-2026.log" {
		t.Fatalf("expected log filename to be 07-Mar-2026.log, got %q", got)
	}
}

func TestParseLogFileDate(t *testing.T) {
	parsed, ok := parseLogFileDate("07-Mar-2026.log")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if parsed.Year() != 2026 || parsed.Month() != time.March || parsed.Day() != 7 {
		t.Fatalf("unexpected parsed date: %s", parsed.Format(time.RFC3339))
	}
	if _, ok := parseLogFileDate("notes.txt"); ok {
		t.Fatalf("expected non-log file to be rejected")
	}
	if _, ok := parseLogFileDate("debug.log"); ok {
		t.Fatalf("expected undated log file to be rejected")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"05-Mar-2026.log",
		"06-Mar-2026.log",
		"07-Mar-2026.log",
		"notes.txt",
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	if err := cleanupOldLogs(dir, now, 2); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "05-Mar-2026.log")); err == nil {
		t.Fatalf("expected 05-Mar-2026.log to be removed")
	} else if !os.IsNotExist(err) {
		t.Fatalf("stat 05-Mar-2026.log: %v", err)
	}
	expectPresent := []string{"06-Mar-2026.log", "07-Mar-2026.log", "notes.txt"}
	for _, name := range expectPresent {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to remain: %v", name, err)
		}
	}
}

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) WriteLine(line string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func TestLogFanoutSplitsLines(t *testing.T) {
	console := &recordingSink{}
	fanout := newLogFanout(console, nil)

	if _, err := fanout.Write([]byte("first line\nsecond ")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := fanout.Write([]byte("half\r\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got := console.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %v", got)
	}
	if got[0] != "first line" || got[1] != "second half" {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func TestLogFanoutDuplicatesToFileSink(t *testing.T) {
	console := &recordingSink{}
	file := &recordingSink{}
	fanout := newLogFanout(console, file)

	if _, err := fanout.Write([]byte("shared line\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if got := console.snapshot(); len(got) != 1 || got[0] != "shared line" {
		t.Fatalf("expected console to see the line, got %v", got)
	}
	if got := file.snapshot(); len(got) != 1 || got[0] != "shared line" {
		t.Fatalf("expected file sink to see the line, got %v", got)
	}
}

func TestLogFanoutFileOnlyLineSkipsConsole(t *testing.T) {
	console := &recordingSink{}
	file := &recordingSink{}
	fanout := newLogFanout(console, file)

	fanout.WriteFileOnlyLine("transcript row", time.Now())

	if got := console.snapshot(); len(got) != 0 {
		t.Fatalf("expected console to stay quiet, got %v", got)
	}
	if got := file.snapshot(); len(got) != 1 || got[0] != "transcript row" {
		t.Fatalf("expected file sink to record the line, got %v", got)
	}
}

func TestLogFanoutFileOnlyLineWithoutFileSink(t *testing.T) {
	fanout := newLogFanout(&recordingSink{}, nil)
	// Must not panic when file logging is disabled.
	fanout.WriteFileOnlyLine("dropped", time.Now())
}

func TestLogFanoutSetConsoleSink(t *testing.T) {
	first := &recordingSink{}
	fanout := newLogFanout(first, nil)

	var sb strings.Builder
	fanout.SetConsoleSink(&sb, false)
	if _, err := fanout.Write([]byte("after swap\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if got := first.snapshot(); len(got) != 0 {
		t.Fatalf("expected original sink to be detached, got %v", got)
	}
	if got := sb.String(); got != "after swap\n" {
		t.Fatalf("expected swapped sink to receive line, got %q", got)
	}
}

func TestSetupLoggingDisabled(t *testing.T) {
	fanout, err := setupLogging(config.LoggingConfig{Enabled: false}, &strings.Builder{})
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	fanout.mu.Lock()
	hasFile := fanout.file != nil
	fanout.mu.Unlock()
	if hasFile {
		t.Fatalf("expected no file sink when logging is disabled")
	}
}

func TestSetupLoggingCreatesDailyFile(t *testing.T) {
	dir := t.TempDir()
	fanout, err := setupLogging(config.LoggingConfig{
		Enabled:       true,
		Dir:           dir,
		RetentionDays: 3,
	}, &strings.Builder{})
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}

	if _, err := fanout.Write([]byte("hello from the monitor\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	path := filepath.Join(dir, logFileNameForDate(time.Now().UTC()))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the monitor") {
		t.Fatalf("expected log file to contain written line, got %q", string(data))
	}
}

func TestDailyFileSinkRotatesOnDayChange(t *testing.T) {
	dir := t.TempDir()
	sink, err := newDailyFileSink(dir, 7)
	if err != nil {
		t.Fatalf("newDailyFileSink: %v", err)
	}
	defer sink.Close()

	day1 := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 8, 0, 1, 0, 0, time.UTC)
	sink.WriteLine("late night", day1)
	sink.WriteLine("early morning", day2)

	first, err := os.ReadFile(filepath.Join(dir, "07-Mar-2026.log"))
	if err != nil {
		t.Fatalf("read day1 file: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "08-Mar-2026.log"))
	if err != nil {
		t.Fatalf("read day2 file: %v", err)
	}
	if !strings.Contains(string(first), "late night") {
		t.Fatalf("expected day1 file to hold its line, got %q", string(first))
	}
	if !strings.Contains(string(second), "early morning") {
		t.Fatalf("expected day2 file to hold its line, got %q", string(second))
	}
}
