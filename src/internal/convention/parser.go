// FILE: src/internal/convention/parser.go
package convention

import (
	"fmt"

	"tracesift/src/internal/core"
)

// Parser recognizes one stack-trace textual convention. Detect judges a
// single reconstructed record; Extract walks the full record sequence and
// returns the raw trace blocks it found, in input order.
type Parser interface {
	// Name returns the convention's registry name.
	Name() string

	// Detect reports whether the record starts (or wholly contains) a
	// trace of this convention.
	Detect(rec core.LogRecord) bool

	// Extract returns the candidate trace blocks found in the records.
	Extract(recs []core.LogRecord) []core.TraceBlock
}

// Registry returns the convention parsers in fixed trial order. The
// dispatcher commits to the first parser whose Detect accepts the first
// reconstructed record.
func Registry() []Parser {
	return []Parser{
		NewTraceback(),
		NewFrameStack(),
		NewPanicDump(),
	}
}

// ByName resolves a parser by registry name, including the sentence
// fallback, for caller-supplied convention overrides.
func ByName(name string) (Parser, error) {
	for _, p := range Registry() {
		if p.Name() == name {
			return p, nil
		}
	}
	if f := NewSentence(); f.Name() == name {
		return f, nil
	}
	return nil, fmt.Errorf("unknown convention: %s", name)
}

// flatten expands records back into their member lines. The traceback and
// panic parsers are line-oriented; record boundaries only matter to them
// through each line's recognized timestamp.
func flatten(recs []core.LogRecord) []core.LogLine {
	var lines []core.LogLine
	for _, r := range recs {
		lines = append(lines, r.Lines...)
	}
	return lines
}
