package sqliteutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestPreflightHealthy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "healthy.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec("create table inbounds (id integer primary key, tag text, up integer, down integer, slave_id integer)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	db.Close()

	res, err := Preflight(path, time.Second)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected healthy preflight, got %+v", res)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected db to remain in place, stat failed: %v", err)
	}
}

func TestPreflightMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	res, err := Preflight(path, time.Second)
	if err == nil {
		t.Fatalf("expected error for missing file, got %+v", res)
	}
	if res.Exists {
		t.Fatalf("expected Exists=false, got %+v", res)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestPreflightRejectsNonSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("not a sqlite database"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	res, err := Preflight(path, time.Second)
	if err == nil {
		t.Fatalf("expected error for non-sqlite file, got %+v", res)
	}
	if !res.Exists || !res.Readable || res.SQLiteFile {
		t.Fatalf("unexpected classification: %+v", res)
	}
	// The file must be left exactly where it was.
	data, readErr := os.ReadFile(path)
	if readErr != nil || string(data) != "not a sqlite database" {
		t.Fatalf("preflight mutated the file: %v %q", readErr, data)
	}
}

func TestPreflightAcceptsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	res, err := Preflight(path, time.Second)
	if err != nil {
		t.Fatalf("expected empty file to pass preflight, got %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected OK result for empty file, got %+v", res)
	}
}

func TestPreflightUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed when running as root")
	}
	path := filepath.Join(t.TempDir(), "locked.db")
	if err := os.WriteFile(path, []byte("x"), 0o000); err != nil {
		t.Fatalf("write file: %v", err)
	}

	res, err := Preflight(path, time.Second)
	if err == nil {
		t.Fatalf("expected error for unreadable file, got %+v", res)
	}
	if !res.Exists || res.Readable {
		t.Fatalf("unexpected classification: %+v", res)
	}
}

func TestHints(t *testing.T) {
	hints := Hints("/etc/x-ui/x-ui.db")
	if len(hints) != 2 {
		t.Fatalf("expected two hints, got %d", len(hints))
	}
	if !strings.Contains(hints[0], "/etc/x-ui/x-ui.db") {
		t.Fatalf("first hint should name the path: %q", hints[0])
	}
	if !strings.Contains(hints[1], "sudo") {
		t.Fatalf("second hint should mention sudo: %q", hints[1])
	}
}
