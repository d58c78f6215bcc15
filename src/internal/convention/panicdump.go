// FILE: src/internal/convention/panicdump.go
package convention

import (
	"regexp"
	"strings"

	"tracesift/src/internal/core"
)

// PanicDumpName identifies the panic/stack-dump convention.
const PanicDumpName = "panicdump"

var (
	pdStartRe     = regexp.MustCompile(`^(?:panic: |fatal error: )`)
	pdGoroutineRe = regexp.MustCompile(`^goroutine \d+ \[[^\]]+\]:$`)
	pdSignalRe    = regexp.MustCompile(`^\[signal [^\]]*\]$`)

	// Indented source location: <indent>/path/file.ext:<line> +0x<hex>.
	pdLocationRe = regexp.MustCompile(`^\s+\S+:\d+(?: \+0x[0-9a-fA-F]+)?$`)

	// Call-frame line, including "created by" origins.
	pdFrameRe = regexp.MustCompile(`^(?:created by )?[\w./\-*()\[\]]+\(.*\)$|^created by \S+`)
)

// PanicDumpParser handles runtime panic output: a panic or goroutine
// marker, then signal lines, call frames, indented source locations and
// pointer/struct argument fragments. One blank line is tolerated only
// when immediately followed by another continuation or a goroutine
// marker; anything else terminates the block.
type PanicDumpParser struct{}

func NewPanicDump() *PanicDumpParser {
	return &PanicDumpParser{}
}

func (p *PanicDumpParser) Name() string {
	return PanicDumpName
}

func (p *PanicDumpParser) Detect(rec core.LogRecord) bool {
	for _, ln := range rec.Lines {
		b := ln.Body()
		if pdStartRe.MatchString(b) || pdGoroutineRe.MatchString(b) {
			return true
		}
	}
	return false
}

func (p *PanicDumpParser) Extract(recs []core.LogRecord) []core.TraceBlock {
	lines := flatten(recs)
	var blocks []core.TraceBlock
	var cur []core.LogLine
	var blank *core.LogLine

	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, core.NewTraceBlock(PanicDumpName, cur))
		}
		cur = nil
		blank = nil
	}

	for i := range lines {
		ln := lines[i]
		b := ln.Body()
		trimmed := strings.TrimSpace(b)

		if cur == nil {
			if pdStartRe.MatchString(b) || pdGoroutineRe.MatchString(b) {
				cur = append(cur, ln)
			}
			continue
		}

		if blank != nil {
			if trimmed != "" && p.continues(b, trimmed) {
				cur = append(cur, *blank)
				blank = nil
				cur = append(cur, ln)
				continue
			}
			// Second blank, or a non-continuation after the tolerated
			// one: the dump is over.
			flush()
			if pdStartRe.MatchString(b) || pdGoroutineRe.MatchString(b) {
				cur = append(cur, ln)
			}
			continue
		}

		if trimmed == "" {
			held := ln
			blank = &held
			continue
		}
		if p.continues(b, trimmed) {
			cur = append(cur, ln)
			continue
		}
		flush()
		if pdStartRe.MatchString(b) || pdGoroutineRe.MatchString(b) {
			cur = append(cur, ln)
		}
	}
	flush()
	return blocks
}

// continues reports whether a non-blank line extends the current dump.
func (p *PanicDumpParser) continues(b, trimmed string) bool {
	switch {
	case pdGoroutineRe.MatchString(b), pdStartRe.MatchString(b):
		return true
	case pdSignalRe.MatchString(trimmed):
		return true
	case pdLocationRe.MatchString(b):
		return true
	case pdFrameRe.MatchString(b):
		return true
	}
	// Pointer/struct argument fragment spilled onto its own line.
	if strings.HasPrefix(b, " ") || strings.HasPrefix(b, "\t") {
		return strings.Contains(trimmed, "0x") ||
			strings.HasPrefix(trimmed, "{") ||
			strings.HasPrefix(trimmed, "...")
	}
	return false
}
