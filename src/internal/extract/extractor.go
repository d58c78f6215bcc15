// FILE: src/internal/extract/extractor.go
package extract

import (
	"sync/atomic"
	"time"

	"tracesift/src/internal/aggregate"
	"tracesift/src/internal/convention"
	"tracesift/src/internal/core"
	"tracesift/src/internal/dedup"
	"tracesift/src/internal/payload"
	"tracesift/src/internal/record"

	"github.com/lixenwraith/log"
)

// Options configure one extractor. Zero values select the reference
// behavior: auto-detected convention, 60-second merge window, lone
// single-line noise filter enabled, default payload marker.
type Options struct {
	// Convention forces a parser by name instead of auto-detection.
	Convention string

	// MergeWindow is the aggregator's timestamp-proximity threshold.
	MergeWindow time.Duration

	// KeepLoneSingles disables the trailing single-line noise filter.
	KeepLoneSingles bool

	// PayloadMarker overrides the embedded-payload field marker.
	PayloadMarker string
}

// Extractor is the engine's single public entry point. It composes the
// whole pipeline: timestamp recognition, record reconstruction, payload
// rewriting, convention parsing, aggregation and deduplication. It holds
// no mutable state between calls beyond statistics counters, so
// concurrent calls need no locking. It never lets an internal failure
// propagate: a faulting record is skipped and the call returns whatever
// succeeded.
type Extractor struct {
	opts     Options
	override convention.Parser
	parsers  []convention.Parser
	fallback convention.Parser
	payload  *payload.Extractor
	agg      *aggregate.Aggregator
	ded      *dedup.Deduper
	logger   *log.Logger

	// Statistics
	totalCalls     atomic.Uint64
	totalLines     atomic.Uint64
	skippedRecords atomic.Uint64
}

// New creates an extractor. The only error is an unknown convention
// override name.
func New(opts Options, logger *log.Logger) (*Extractor, error) {
	e := &Extractor{
		opts:     opts,
		parsers:  convention.Registry(),
		fallback: convention.NewSentence(),
		payload:  payload.New(opts.PayloadMarker, logger),
		agg:      aggregate.New(opts.MergeWindow, opts.KeepLoneSingles, logger),
		ded:      dedup.New(logger),
		logger:   logger,
	}
	if opts.Convention != "" {
		p, err := convention.ByName(opts.Convention)
		if err != nil {
			return nil, err
		}
		e.override = p
	}
	return e, nil
}

// Extract runs the pipeline over already-fetched log lines, oldest
// first, and returns the ordered extracted trace texts.
func (e *Extractor) Extract(lines []string) []string {
	return texts(e.ded.Apply(e.fold(lines)))
}

// MostRecent returns the single most recent extracted trace by max
// timestamp, or "" when nothing was extracted.
func (e *Extractor) MostRecent(lines []string) string {
	inc, ok := MostRecentIncident(e.ded.Apply(e.fold(lines)))
	if !ok {
		return ""
	}
	return inc.Block.Text
}

// Incidents runs the same pipeline and returns structured results for
// callers that render or forward them.
func (e *Extractor) Incidents(lines []string) []core.Incident {
	return e.ded.Apply(e.fold(lines))
}

// MostRecentIncident picks the incident with the latest max timestamp.
// The final ordering sorts by (min, max), so with overlapping spans the
// latest-ending incident is not necessarily the last element; every
// entry is inspected. When no entry is timestamped the last one seen
// wins; a timestamp tie keeps the earlier entry.
func MostRecentIncident(ordered []core.Incident) (core.Incident, bool) {
	if len(ordered) == 0 {
		return core.Incident{}, false
	}
	best := -1
	for i, inc := range ordered {
		if inc.Block.MaxTS == nil {
			continue
		}
		if best < 0 || ordered[best].Block.MaxTS.Before(inc.Block.MaxTS) {
			best = i
		}
	}
	if best < 0 {
		return ordered[len(ordered)-1], true
	}
	return ordered[best], true
}

// GetStats returns pipeline statistics.
func (e *Extractor) GetStats() map[string]any {
	return map[string]any{
		"total_calls":     e.totalCalls.Load(),
		"total_lines":     e.totalLines.Load(),
		"skipped_records": e.skippedRecords.Load(),
		"aggregator":      e.agg.GetStats(),
		"dedup":           e.ded.GetStats(),
	}
}

// fold runs the pipeline up to aggregation, without the final
// dedup/order pass (ExtractFromFiles runs that once over all files).
func (e *Extractor) fold(lines []string) []core.Incident {
	e.totalCalls.Add(1)
	e.totalLines.Add(uint64(len(lines)))

	records := record.Rebuild(lines)
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		records[i] = e.rewriteSafe(records[i])
	}

	parser := e.selectParser(records[0])
	if parser == nil {
		e.logger.Debug("msg", "No convention matched",
			"component", "extractor",
			"records", len(records))
		return nil
	}

	blocks := e.extractSafe(parser, records)
	return e.agg.Fold(blocks)
}

// selectParser commits to the override, else the first registry parser
// whose Detect accepts the first reconstructed record, else the weak
// sentence heuristic.
func (e *Extractor) selectParser(first core.LogRecord) convention.Parser {
	if e.override != nil {
		return e.override
	}
	for _, p := range e.parsers {
		if e.detectSafe(p, first) {
			return p
		}
	}
	if e.detectSafe(e.fallback, first) {
		return e.fallback
	}
	return nil
}

// rewriteSafe applies the payload rewrite to one record, converting any
// fault into "leave the record as plain text".
func (e *Extractor) rewriteSafe(rec core.LogRecord) (out core.LogRecord) {
	out = rec
	defer func() {
		if r := recover(); r != nil {
			e.skippedRecords.Add(1)
			e.logger.Warn("msg", "Recovered fault during payload rewrite",
				"component", "extractor",
				"panic", r)
			out = rec
		}
	}()
	if rewritten, ok := e.payload.Rewrite(rec); ok {
		out = rewritten
	}
	return out
}

func (e *Extractor) detectSafe(p convention.Parser, rec core.LogRecord) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.skippedRecords.Add(1)
			e.logger.Warn("msg", "Recovered fault during detection",
				"component", "extractor",
				"parser", p.Name(),
				"panic", r)
			ok = false
		}
	}()
	return p.Detect(rec)
}

// extractSafe runs the parser under recover. A fault on the full pass
// triggers a degraded record-by-record pass so that only the faulting
// record is lost; its blocks still reach the aggregator, which folds
// adjacent fragments back together by timestamp.
func (e *Extractor) extractSafe(p convention.Parser, records []core.LogRecord) []core.TraceBlock {
	if blocks, ok := e.tryExtract(p, records); ok {
		return blocks
	}
	var out []core.TraceBlock
	for i := range records {
		blocks, ok := e.tryExtract(p, records[i:i+1])
		if !ok {
			e.skippedRecords.Add(1)
			continue
		}
		out = append(out, blocks...)
	}
	return out
}

func (e *Extractor) tryExtract(p convention.Parser, recs []core.LogRecord) (blocks []core.TraceBlock, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("msg", "Recovered fault during extraction",
				"component", "extractor",
				"parser", p.Name(),
				"records", len(recs),
				"panic", r)
			blocks, ok = nil, false
		}
	}()
	return p.Extract(recs), true
}

func texts(incidents []core.Incident) []string {
	out := make([]string, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.Block.Text)
	}
	return out
}
