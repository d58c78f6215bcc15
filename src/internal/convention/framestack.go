// FILE: src/internal/convention/framestack.go
package convention

import (
	"regexp"

	"tracesift/src/internal/core"
)

// FrameStackName identifies the frame-line convention.
const FrameStackName = "framestack"

var (
	// Call-frame line: at <qualified.method>(<File>:<line>).
	fsFrameRe = regexp.MustCompile(`^\s*at\s+\S+\(.*\)\s*$`)

	// Elision line closing a repeated frame run.
	fsMoreRe = regexp.MustCompile(`^\s*\.\.\. \d+ more$`)

	fsExceptionRe = regexp.MustCompile(`(?i)\bexception\b`)
)

// FrameStackParser handles frame-line stacks. Detection is content-based
// per whole reconstructed record: there is no distinct start token, a
// record qualifies once it contains at least one call-frame line, and a
// record mentioning an exception qualifies as the trace's head even
// before its frames arrive as separate records. Stray exception-word
// records that never gain multi-line context are disposed of downstream
// by the aggregator's noise filter.
type FrameStackParser struct{}

func NewFrameStack() *FrameStackParser {
	return &FrameStackParser{}
}

func (p *FrameStackParser) Name() string {
	return FrameStackName
}

func (p *FrameStackParser) Detect(rec core.LogRecord) bool {
	return p.qualifies(rec)
}

// Extract emits one block per qualifying record; temporally adjacent
// blocks are folded into incidents by the aggregator.
func (p *FrameStackParser) Extract(recs []core.LogRecord) []core.TraceBlock {
	var blocks []core.TraceBlock
	for _, rec := range recs {
		if p.qualifies(rec) {
			blocks = append(blocks, core.NewTraceBlock(FrameStackName, rec.Lines))
		}
	}
	return blocks
}

func (p *FrameStackParser) qualifies(rec core.LogRecord) bool {
	for _, ln := range rec.Lines {
		b := ln.Body()
		if fsFrameRe.MatchString(b) || fsMoreRe.MatchString(b) || fsExceptionRe.MatchString(b) {
			return true
		}
	}
	return false
}
