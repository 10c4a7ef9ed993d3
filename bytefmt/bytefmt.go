// Package bytefmt renders cumulative traffic counters and their deltas
// as human-readable byte strings for console display.
package bytefmt

import (
	"database/sql"
	"fmt"
)

var units = [...]string{"B", "KB", "MB", "GB", "TB"}

// Bytes formats n with two decimal places and a 1024-based unit suffix.
// Values of a petabyte or more stay in PB, so the mantissa can exceed
// 1024 there. Negative values never pass the first unit comparison and
// render unscaled in B.
func Bytes(n int64) string {
	v := float64(n)
	for _, unit := range units {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f PB", v)
}

// NullBytes formats a counter read from the database. A NULL counter
// renders as the literal "0 B", distinguishable from a real zero which
// renders as "0.00 B".
func NullBytes(v sql.NullInt64) string {
	if !v.Valid {
		return "0 B"
	}
	return Bytes(v.Int64)
}
