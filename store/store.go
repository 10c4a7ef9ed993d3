// Package store reads inbound traffic rows from the panel's SQLite
// database. Access is strictly read-only; the panel process owns the
// file and keeps writing while we poll.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"xuimon/inbound"
)

const fetchInboundsQuery = `select id, tag, up, down, slave_id from inbounds order by slave_id, id`

// AccessError classifies any failure to open or read the panel database
// so the caller can print remediation steps instead of a bare error.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("database access failed for %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Store is a read-only handle on the panel database.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens the database at path in read-only mode and verifies the
// connection. The single-connection pool keeps the driver from opening
// extra file handles against a database another process is writing.
func Open(path string, busyTimeoutMS int) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &AccessError{Path: path, Err: err}
	}
	if busyTimeoutMS > 0 {
		if _, err := db.Exec(fmt.Sprintf("pragma busy_timeout=%d", busyTimeoutMS)); err != nil {
			_ = db.Close()
			return nil, &AccessError{Path: path, Err: err}
		}
	}
	// query_only guards against accidental writes even though the
	// connection is already mode=ro.
	if _, err := db.Exec("pragma query_only=1"); err != nil {
		_ = db.Close()
		return nil, &AccessError{Path: path, Err: err}
	}
	return &Store{path: path, db: db}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// FetchInbounds reads one snapshot of all inbound rows ordered by
// (slave id, inbound id). NULL counters survive the scan as invalid
// NullInt64 values rather than being coerced to zero.
func (s *Store) FetchInbounds(ctx context.Context) (inbound.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, fetchInboundsQuery)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	var snap inbound.Snapshot
	for rows.Next() {
		var rec inbound.Record
		if err := rows.Scan(&rec.ID, &rec.Tag, &rec.Up, &rec.Down, &rec.SlaveID); err != nil {
			return nil, s.wrap(err)
		}
		snap = append(snap, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err)
	}
	return snap, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// wrap classifies err as an AccessError unless it is a context
// cancellation, which must stay recognizable to the polling loop's
// shutdown path.
func (s *Store) wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &AccessError{Path: s.path, Err: err}
}
