// FILE: src/internal/payload/payload.go
package payload

import (
	"errors"
	"strings"

	"tracesift/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/valyala/fastjson"
)

// Internal scan outcomes. The reference behavior collapsed both failure
// modes and success into one flag; externally they are still identical
// (any failure re-offers the record as plain text), but the two failures
// are reported as distinct errors so a malformed span can never be
// mistaken for a successfully emptied stack.
var (
	// ErrUnmatchedCloser: a '}' appeared before any opener.
	ErrUnmatchedCloser = errors.New("unmatched closing bracket before span")

	// ErrUnterminated: the text ended with openers still on the stack.
	ErrUnterminated = errors.New("unterminated bracket span")

	errNoOpener = errors.New("no opening bracket after marker")
)

// Extractor isolates a JSON-shaped trace payload embedded in a free-text
// log field and lifts the nested trace out of it.
type Extractor struct {
	marker string
	pool   fastjson.ParserPool
	logger *log.Logger
}

// New creates a payload extractor for the given field marker. An empty
// marker selects the default "with data {".
func New(marker string, logger *log.Logger) *Extractor {
	if marker == "" {
		marker = core.DefaultPayloadMarker
	}
	return &Extractor{
		marker: marker,
		logger: logger,
	}
}

// Rewrite attempts to replace a record's text with the trace nested in
// its structured payload. The returned flag reports whether a rewrite
// happened. Every failure is non-fatal: the original record is returned
// unchanged so it can be parsed as plain text instead.
func (x *Extractor) Rewrite(rec core.LogRecord) (core.LogRecord, bool) {
	text := rec.Text()
	idx := strings.Index(text, x.marker)
	if idx < 0 {
		return rec, false
	}

	start, end, err := scanSpan(text, idx)
	if err != nil {
		x.logger.Debug("msg", "Payload span scan failed",
			"component", "payload",
			"error", err)
		return rec, false
	}

	p := x.pool.Get()
	defer x.pool.Put(p)

	v, err := p.Parse(text[start : end+1])
	if err != nil {
		x.logger.Debug("msg", "Payload is not a valid object",
			"component", "payload",
			"error", err)
		return rec, false
	}

	trace := v.GetStringBytes("stacktrace")
	if trace == nil {
		trace = v.GetStringBytes("exception")
	}
	if len(trace) == 0 {
		return rec, false
	}

	return rebuildRecord(rec, string(trace)), true
}

// scanSpan walks the text from the marker with a push/pop counter over
// '{'/'}'. start is the index of the first opener, end the index of the
// closer that empties the stack. Brackets inside string literals are not
// treated specially; a shifted span simply fails the later parse and the
// record degrades to plain text.
func scanSpan(text string, from int) (start, end int, err error) {
	depth := 0
	start = -1
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				return 0, 0, ErrUnmatchedCloser
			}
			depth--
			if depth == 0 {
				return start, i, nil
			}
		}
	}
	if start < 0 {
		return 0, 0, errNoOpener
	}
	return 0, 0, ErrUnterminated
}

// rebuildRecord produces a record whose lines are the extracted trace.
// The original record's timestamp is carried on the first line with
// zeroed offsets, since the offsets describe the original raw text.
func rebuildRecord(rec core.LogRecord, trace string) core.LogRecord {
	parts := strings.Split(trace, "\n")
	lines := make([]core.LogLine, len(parts))
	for i, s := range parts {
		lines[i] = core.LogLine{Raw: s}
	}
	if rec.TS != nil {
		ts := *rec.TS
		ts.Start, ts.End = 0, 0
		lines[0].TS = &ts
	}
	return core.LogRecord{Lines: lines, TS: rec.TS}
}
