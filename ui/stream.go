package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// TranscriptSink receives a copy of every product line without console
// markup, typically the file side of the log fanout.
type TranscriptSink interface {
	WriteFileOnlyLine(line string, now time.Time)
}

// Stream writes monitor output straight to a writer, one line per call,
// in the order produced. With color disabled the bytes match the
// documented plain format exactly; with color enabled only the markup
// tokens differ. Status lines are not part of the stream format and go
// to the transcript alone.
type Stream struct {
	mu         sync.Mutex
	w          io.Writer
	color      bool
	transcript TranscriptSink
}

// NewStream creates a stream surface writing to w. transcript may be
// nil when file logging is disabled.
func NewStream(w io.Writer, color bool, transcript TranscriptSink) *Stream {
	return &Stream{w: w, color: color, transcript: transcript}
}

func (s *Stream) WaitReady() {}

func (s *Stream) Stop() {}

func (s *Stream) SetHeader(lines []string) { s.writeLines(lines) }

func (s *Stream) BeginCycle(lines []string) { s.writeLines(lines) }

func (s *Stream) AppendRow(line string) { s.writeLines([]string{line}) }

func (s *Stream) EndCycle(lines []string) { s.writeLines(lines) }

// SetStatus records session stats in the transcript only; the console
// stream stays byte-identical to the plain format.
func (s *Stream) SetStatus(lines []string) {
	if s == nil || s.transcript == nil {
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		s.transcript.WriteFileOnlyLine(line, now)
	}
}

func (s *Stream) Notice(line string) { s.writeLines([]string{line}) }

func (s *Stream) writeLines(lines []string) {
	if s == nil || s.w == nil {
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		fmt.Fprintln(s.w, ApplyMarkup(line, s.color))
		if s.transcript != nil {
			s.transcript.WriteFileOnlyLine(StripMarkup(line), now)
		}
	}
}
