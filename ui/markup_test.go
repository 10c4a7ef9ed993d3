package ui

import "testing"

func TestApplyMarkupColor(t *testing.T) {
	got := ApplyMarkup("[yellow]changed row[-]", true)
	want := "\x1b[33mchanged row\x1b[0m"
	if got != want {
		t.Fatalf("color markup mismatch: got %q want %q", got, want)
	}
}

func TestApplyMarkupAppendsResetWhenMissing(t *testing.T) {
	got := ApplyMarkup("[red]bare color", true)
	want := "\x1b[31mbare color\x1b[0m"
	if got != want {
		t.Fatalf("expected trailing reset: got %q want %q", got, want)
	}
}

func TestApplyMarkupStrip(t *testing.T) {
	got := ApplyMarkup("[yellow]changed row[-]", false)
	if got != "changed row" {
		t.Fatalf("strip mismatch: got %q", got)
	}
}

func TestMarkupLeavesLiteralBracketsAlone(t *testing.T) {
	lines := []string{
		"  Slave 0 | ID= 1 | default              | ↑    1000.00 B | ↓      1.95 KB  [new record]",
		"  [+1.02 KB ↑ / +0.00 B ↓]",
		"[12:00:00] check #3:",
	}
	for _, line := range lines {
		if got := ApplyMarkup(line, true); got != line {
			t.Fatalf("color mode altered literal text:\n got %q\nwant %q", got, line)
		}
		if got := ApplyMarkup(line, false); got != line {
			t.Fatalf("strip mode altered literal text:\n got %q\nwant %q", got, line)
		}
		if got := StripMarkup(line); got != line {
			t.Fatalf("StripMarkup altered literal text:\n got %q\nwant %q", got, line)
		}
	}
}

func TestStripMarkup(t *testing.T) {
	got := StripMarkup("[yellow]row[-] and [red]more[-]")
	if got != "row and more" {
		t.Fatalf("StripMarkup mismatch: got %q", got)
	}
}
