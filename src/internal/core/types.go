// FILE: src/internal/core/types.go
package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timestamp is a parsed instant recognized at the head of a log line.
// Raw holds the exact matched substring; Start/End are its byte offsets
// within the original line. Fractional seconds beyond 6 digits are
// truncated before Time is constructed.
type Timestamp struct {
	Time    time.Time
	Grammar string
	Raw     string
	Start   int
	End     int
}

// Before reports whether t is strictly earlier than other.
func (t *Timestamp) Before(other *Timestamp) bool {
	return t.Time.Before(other.Time)
}

// LogLine is one physical input line with its recognized timestamp, if any.
type LogLine struct {
	Raw string
	TS  *Timestamp
}

// Body returns the line text after the recognized timestamp prefix.
// Lines without a timestamp (or with a synthetic, offset-less one)
// return the full raw text.
func (l LogLine) Body() string {
	if l.TS != nil && l.TS.End > 0 && l.TS.End <= len(l.Raw) {
		return l.Raw[l.TS.End:]
	}
	return l.Raw
}

// LogRecord is one reconstructed logical record: a timestamped head line
// plus the physical continuation lines that followed it.
type LogRecord struct {
	Lines []LogLine
	TS    *Timestamp
}

// Text returns the record's lines joined with newlines.
func (r LogRecord) Text() string {
	parts := make([]string, len(r.Lines))
	for i, ln := range r.Lines {
		parts[i] = ln.Raw
	}
	return strings.Join(parts, "\n")
}

// TraceBlock is an ordered group of log lines judged to form one candidate
// trace excerpt. Blocks are immutable once constructed; merging produces a
// new block. The multiline classification is fixed at construction and
// never re-derived on an existing block.
type TraceBlock struct {
	Text       string
	Convention string
	MinTS      *Timestamp
	MaxTS      *Timestamp
	Multiline  bool
}

// NewTraceBlock builds a block from lines produced by one convention
// parser. Min/max timestamps are taken over the member lines; both are
// nil when no line carried one.
func NewTraceBlock(convention string, lines []LogLine) TraceBlock {
	parts := make([]string, len(lines))
	var minTS, maxTS *Timestamp
	for i, ln := range lines {
		parts[i] = ln.Raw
		if ln.TS == nil {
			continue
		}
		if minTS == nil || ln.TS.Before(minTS) {
			minTS = ln.TS
		}
		if maxTS == nil || maxTS.Before(ln.TS) {
			maxTS = ln.TS
		}
	}
	return TraceBlock{
		Text:       strings.Join(parts, "\n"),
		Convention: convention,
		MinTS:      minTS,
		MaxTS:      maxTS,
		Multiline:  len(lines) > 1,
	}
}

// MergeBlocks folds b into a, producing a new block. The inputs are not
// modified. Both blocks must come from the same convention parser.
func MergeBlocks(a, b TraceBlock) TraceBlock {
	minTS := a.MinTS
	if minTS == nil || (b.MinTS != nil && b.MinTS.Before(minTS)) {
		minTS = b.MinTS
	}
	maxTS := a.MaxTS
	if maxTS == nil || (b.MaxTS != nil && maxTS.Before(b.MaxTS)) {
		maxTS = b.MaxTS
	}
	text := a.Text + "\n" + b.Text
	return TraceBlock{
		Text:       text,
		Convention: a.Convention,
		MinTS:      minTS,
		MaxTS:      maxTS,
		Multiline:  strings.Contains(text, "\n"),
	}
}

// Incident is the aggregator's output unit: one or more trace blocks
// folded into a single externally meaningful failure event. The ID lets
// the downstream diagnostics pipeline reference the incident.
type Incident struct {
	ID    uuid.UUID
	Block TraceBlock
}
