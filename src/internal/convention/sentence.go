// FILE: src/internal/convention/sentence.go
package convention

import (
	"strings"
	"unicode"

	"tracesift/src/internal/core"
)

// SentenceName identifies the weak fallback heuristic.
const SentenceName = "sentence"

// SentenceParser is the last-resort heuristic used when no convention
// matches: any record that reads like a meaningful sentence is admitted
// as a candidate block. It is deliberately permissive and low-precision;
// the aggregator's noise filter drops the stray single-line entries it
// lets through.
type SentenceParser struct{}

func NewSentence() *SentenceParser {
	return &SentenceParser{}
}

func (p *SentenceParser) Name() string {
	return SentenceName
}

func (p *SentenceParser) Detect(rec core.LogRecord) bool {
	return looksLikeSentence(rec)
}

func (p *SentenceParser) Extract(recs []core.LogRecord) []core.TraceBlock {
	var blocks []core.TraceBlock
	for _, rec := range recs {
		if looksLikeSentence(rec) {
			blocks = append(blocks, core.NewTraceBlock(SentenceName, rec.Lines))
		}
	}
	return blocks
}

// looksLikeSentence requires at least three words with letters making up
// the majority of the non-space text.
func looksLikeSentence(rec core.LogRecord) bool {
	if len(rec.Lines) == 0 {
		return false
	}
	text := rec.Lines[0].Body()
	if len(strings.Fields(text)) < 3 {
		return false
	}
	letters, total := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return total > 0 && letters*2 > total
}
