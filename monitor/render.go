package monitor

import (
	"fmt"
	"strings"

	"xuimon/bytefmt"
	"xuimon/inbound"
)

// ruleWidth is the width of the separator rules between header and
// cycle blocks.
const ruleWidth = 100

// renderRow formats one inbound row plus its delta annotation. Changed
// rows are wrapped in yellow markup; the concrete surface decides
// whether that becomes an ANSI escape, a tview color, or nothing.
func renderRow(rec inbound.Record, d Delta) string {
	var delta string
	if d.New {
		delta = "  [new record]"
	} else {
		// The plus sign is literal; a reset counter renders as "+-N B".
		delta = fmt.Sprintf("  [+%s ↑ / +%s ↓]", bytefmt.Bytes(d.Up), bytefmt.Bytes(d.Down))
		if d.Changed {
			delta = "  *** " + delta + " ***"
		}
	}
	line := fmt.Sprintf("  Slave %d | ID=%2d | %-20s | ↑ %12s | ↓ %12s%s",
		rec.SlaveID, rec.ID, rec.Tag,
		bytefmt.NullBytes(rec.Up), bytefmt.NullBytes(rec.Down), delta)
	if d.Changed {
		return "[yellow]" + line + "[-]"
	}
	return line
}

// totalsLine renders the aggregate line closing a cycle. An empty
// snapshot has no counters at all, so both totals take the absent form
// "0 B" rather than a computed zero.
func totalsLine(snap inbound.Snapshot) string {
	if len(snap) == 0 {
		return "  Total: ↑ 0 B | ↓ 0 B"
	}
	up, down := Totals(snap)
	return fmt.Sprintf("  Total: ↑ %s | ↓ %s", bytefmt.Bytes(up), bytefmt.Bytes(down))
}

func rule(ch string) string {
	return strings.Repeat(ch, ruleWidth)
}
