// FILE: src/internal/convention/traceback.go
package convention

import (
	"regexp"
	"strings"

	"tracesift/src/internal/core"
)

// TracebackName identifies the traceback-header convention.
const TracebackName = "traceback"

var (
	// Plain header or the exception-group variant, possibly nested under
	// group tree markers.
	tbHeaderRe = regexp.MustCompile(`(?:Exception Group )?Traceback \(most recent call last\):`)

	// Indented call-site reference.
	tbFileRe = regexp.MustCompile(`^\s+File "[^"]*", line \d+(?:, in .*)?$`)

	// Underline/caret precision annotation under a source line.
	tbCaretRe = regexp.MustCompile(`^\s*[\^~]+\s*$`)

	// Exception-group tree markers.
	tbGroupRe = regexp.MustCompile(`^[|+\-]`)

	// Final "<TypeName>: <message>" line terminating a trace.
	tbTailRe = regexp.MustCompile(`^[A-Za-z_][\w.]*:( .*)?$`)

	// Chain indicators folding a follow-up traceback into the same block.
	tbChainRe = regexp.MustCompile(`^(?:During handling of the above exception, another exception occurred:|The above exception was the direct cause of the following exception:)$`)
)

// TracebackParser handles interpreter-style tracebacks: a literal header
// line, indented frame and source lines, and a final typed exception
// line. Chained tracebacks joined by a chain-indicator line fold into one
// block.
type TracebackParser struct{}

func NewTraceback() *TracebackParser {
	return &TracebackParser{}
}

func (p *TracebackParser) Name() string {
	return TracebackName
}

// Detect accepts a record containing a traceback header on any line.
func (p *TracebackParser) Detect(rec core.LogRecord) bool {
	for _, ln := range rec.Lines {
		if tbHeaderRe.MatchString(ln.Body()) {
			return true
		}
	}
	return false
}

// Extract walks the line stream with a small state machine: outside a
// block it waits for a header; inside, it consumes continuation lines
// until the tail exception line, then peeks past blanks for a chain
// indicator or another header before closing the block.
func (p *TracebackParser) Extract(recs []core.LogRecord) []core.TraceBlock {
	lines := flatten(recs)
	var blocks []core.TraceBlock
	var cur []core.LogLine
	var pending []core.LogLine
	sawTail := false      // tail exception line seen, block may still chain
	expectHeader := false // chain indicator seen, a header must follow

	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, core.NewTraceBlock(TracebackName, cur))
		}
		cur, pending = nil, nil
		sawTail, expectHeader = false, false
	}

	for _, ln := range lines {
		b := ln.Body()
		trimmed := strings.TrimSpace(b)

		if cur == nil {
			if tbHeaderRe.MatchString(b) {
				cur = append(cur, ln)
			}
			continue
		}

		if sawTail || expectHeader {
			// The block is complete unless a chain indicator or a fresh
			// header folds the next trace into it. Blank lines between
			// the two stay with the block only if the chain continues.
			if trimmed == "" {
				pending = append(pending, ln)
				continue
			}
			if (sawTail && tbChainRe.MatchString(trimmed)) || tbHeaderRe.MatchString(b) {
				cur = append(cur, pending...)
				pending = nil
				expectHeader = !tbHeaderRe.MatchString(b)
				sawTail = false
				cur = append(cur, ln)
				continue
			}
			flush()
			if tbHeaderRe.MatchString(b) {
				cur = append(cur, ln)
			}
			continue
		}

		switch {
		case trimmed == "":
			// Blank before any tail: the trace is truncated; keep what
			// was collected.
			flush()
		case tbFileRe.MatchString(b), tbCaretRe.MatchString(b), tbGroupRe.MatchString(trimmed):
			cur = append(cur, ln)
		case tbTailRe.MatchString(b):
			cur = append(cur, ln)
			sawTail = true
		case strings.HasPrefix(b, " ") || strings.HasPrefix(b, "\t"):
			// Indented source line under a call-site reference.
			cur = append(cur, ln)
		default:
			flush()
			if tbHeaderRe.MatchString(b) {
				cur = append(cur, ln)
			}
		}
	}
	flush()
	return blocks
}
