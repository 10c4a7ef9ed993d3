// Package inbound defines the traffic accounting rows the monitor reads
// from the panel database. One Record corresponds to one row of the
// inbounds table; counters may be NULL when a slave has never reported.
package inbound

import "database/sql"

// Record is a single inbound's cumulative traffic counters.
type Record struct {
	ID      int64
	Tag     string
	Up      sql.NullInt64
	Down    sql.NullInt64
	SlaveID int64
}

// Snapshot is the full set of rows read in one polling cycle, ordered by
// (slave id, inbound id) so consecutive cycles line up row for row.
type Snapshot []Record
