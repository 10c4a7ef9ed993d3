// Package sqliteutil checks a SQLite database file before the monitor
// starts polling it. Every check is read-only; the file belongs to the
// panel process and must never be renamed, checkpointed, or written.
package sqliteutil

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqlite main files start with this signature. An empty file is also
// accepted; sqlite treats a zero-length file as a fresh database.
var sqliteSignature = []byte("SQLite format 3\x00")

// Result reports the outcome of a read-only preflight check.
type Result struct {
	Exists     bool          // The database file is present.
	Readable   bool          // The current user can open it for reading.
	SQLiteFile bool          // The file carries the SQLite header (or is empty).
	CheckError error         // Nil when quick_check passed or was not reached.
	Elapsed    time.Duration
}

// OK reports whether every stage of the preflight passed.
func (r Result) OK() bool {
	return r.Exists && r.Readable && r.SQLiteFile && r.CheckError == nil
}

// Preflight inspects the database at path without mutating it: stat,
// header read, then a bounded quick_check over a throwaway read-only
// connection. The returned error describes the first failed stage;
// Result carries the classification for logging either way.
func Preflight(path string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	start := time.Now().UTC()
	res := Result{}

	if strings.TrimSpace(path) == "" {
		return res, errors.New("preflight: empty path")
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Elapsed = time.Since(start)
		if os.IsNotExist(err) {
			return res, fmt.Errorf("preflight: database file does not exist: %s", path)
		}
		return res, fmt.Errorf("preflight: stat %s: %w", path, err)
	}
	if info.IsDir() {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("preflight: %s is a directory, not a database file", path)
	}
	res.Exists = true

	ok, err := hasSQLiteHeader(path)
	if err != nil {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("preflight: read %s: %w", path, err)
	}
	res.Readable = true
	if !ok {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("preflight: %s is not a SQLite database", path)
	}
	res.SQLiteFile = true

	res.CheckError = quickCheck(path, timeout)
	res.Elapsed = time.Since(start)
	if res.CheckError != nil {
		return res, fmt.Errorf("preflight: quick_check on %s: %w", path, res.CheckError)
	}
	return res, nil
}

// Hints returns the remediation steps printed alongside a database
// access failure.
func Hints(path string) []string {
	return []string{
		"1. The database file exists: " + path,
		"2. It is readable by the current user (sudo may be required)",
	}
}

func hasSQLiteHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, len(sqliteSignature))
	n, err := io.ReadFull(f, buf)
	if err != nil {
		// A short or empty file cannot carry the signature; treat a
		// zero-length file as an empty database rather than garbage.
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return n == 0, nil
		}
		return false, err
	}
	return bytes.Equal(buf, sqliteSignature), nil
}

// quickCheck runs pragma quick_check over its own read-only connection
// so a corrupt file is reported before the polling loop starts.
func quickCheck(path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("pragma busy_timeout=%d", timeout.Milliseconds())); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, "pragma quick_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		if scanErr := rows.Scan(&status); scanErr != nil {
			return scanErr
		}
		if strings.TrimSpace(status) != "ok" {
			return fmt.Errorf("quick_check reported %q", status)
		}
	}
	return rows.Err()
}
