// Package ui renders monitor output either as a plain console stream or
// as a full-screen tview dashboard. Producers embed color markup tokens
// like [yellow]...[-]; each surface decides whether tokens become ANSI
// escapes, tview colors, or nothing.
package ui

import "strings"

const resetANSI = "\x1b[0m"

var ansiColorReplacer = strings.NewReplacer(
	"[red]", "\x1b[31m",
	"[green]", "\x1b[32m",
	"[yellow]", "\x1b[33m",
	"[blue]", "\x1b[34m",
	"[magenta]", "\x1b[35m",
	"[cyan]", "\x1b[36m",
	"[white]", "\x1b[37m",
	"[-]", resetANSI,
)

var ansiStripReplacer = strings.NewReplacer(
	"[red]", "",
	"[green]", "",
	"[yellow]", "",
	"[blue]", "",
	"[magenta]", "",
	"[cyan]", "",
	"[white]", "",
	"[-]", "",
)

// ApplyMarkup converts markup tokens to ANSI escapes, or strips them
// when color is off. A reset is appended only when a token was actually
// replaced, so lines with literal brackets (delta annotations, cycle
// timestamps) pass through byte for byte.
func ApplyMarkup(line string, enableColor bool) string {
	if line == "" {
		return line
	}
	if !enableColor {
		return ansiStripReplacer.Replace(line)
	}
	replaced := ansiColorReplacer.Replace(line)
	if replaced != line && !strings.HasSuffix(replaced, resetANSI) {
		replaced += resetANSI
	}
	return replaced
}

// StripMarkup removes all markup tokens. Used for transcripts and any
// surface that must emit the documented plain format exactly.
func StripMarkup(line string) string {
	if line == "" {
		return line
	}
	return ansiStripReplacer.Replace(line)
}
