// FILE: src/internal/aggregate/aggregate.go
package aggregate

import (
	"sync/atomic"
	"time"

	"tracesift/src/internal/core"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
)

// Aggregator state while walking one parser's raw block list.
type state int

const (
	stateEmpty state = iota
	stateHoldingSingle
	stateHoldingMulti
)

// Aggregator folds adjacent raw trace blocks from a single convention
// parser into coherent incidents using timestamp proximity. It never
// merges across convention boundaries because it only ever sees one
// parser's output list at a time.
type Aggregator struct {
	window          time.Duration
	keepLoneSingles bool
	logger          *log.Logger

	// Statistics
	totalBlocks    atomic.Uint64
	totalIncidents atomic.Uint64
	droppedSingles atomic.Uint64
}

// New creates an aggregator. window is the timestamp-proximity merge
// threshold; keepLoneSingles disables the trailing single-line noise
// filter.
func New(window time.Duration, keepLoneSingles bool, logger *log.Logger) *Aggregator {
	if window <= 0 {
		window = core.DefaultMergeWindowSeconds * time.Second
	}
	return &Aggregator{
		window:          window,
		keepLoneSingles: keepLoneSingles,
		logger:          logger,
	}
}

// Fold walks the raw blocks left to right with one current entry and an
// explicit state machine keyed on (current has timestamp, next has
// timestamp, gap under window, current is multi-line, next is
// multi-line). Merging always constructs new blocks; inputs are never
// modified.
func (a *Aggregator) Fold(blocks []core.TraceBlock) []core.Incident {
	a.totalBlocks.Add(uint64(len(blocks)))

	var done []core.TraceBlock
	var cur core.TraceBlock
	st := stateEmpty

	emit := func() {
		done = append(done, cur)
	}
	hold := func(b core.TraceBlock) {
		cur = b
		if b.Multiline {
			st = stateHoldingMulti
		} else {
			st = stateHoldingSingle
		}
	}
	merge := func(n core.TraceBlock) {
		hold(core.MergeBlocks(cur, n))
	}

	for _, n := range blocks {
		if st == stateEmpty {
			hold(n)
			continue
		}

		switch {
		case cur.MaxTS == nil:
			// Current carries no timestamp: absorb single-line
			// fragments, but a multi-line block stands on its own.
			if n.Multiline {
				emit()
				hold(n)
			} else {
				merge(n)
			}

		case n.MinTS == nil:
			// Timestamp-less fragments always continue the current entry.
			merge(n)

		default:
			gap := n.MinTS.Time.Sub(cur.MaxTS.Time)
			if gap < 0 {
				gap = -gap
			}
			if gap < a.window {
				if st == stateHoldingMulti && n.Multiline {
					// Related but distinct events inside the window.
					emit()
					hold(n)
				} else {
					merge(n)
				}
			} else {
				if st == stateHoldingSingle {
					// A lone single-line entry with no nearby context
					// is noise.
					a.dropSingle(cur)
					hold(n)
				} else {
					emit()
					hold(n)
				}
			}
		}
	}

	if st != stateEmpty {
		if st == stateHoldingMulti || a.keepLoneSingles {
			emit()
		} else {
			a.dropSingle(cur)
		}
	}

	incidents := make([]core.Incident, 0, len(done))
	for _, b := range done {
		incidents = append(incidents, core.Incident{ID: uuid.New(), Block: b})
	}
	a.totalIncidents.Add(uint64(len(incidents)))
	return incidents
}

// GetStats returns aggregation statistics.
func (a *Aggregator) GetStats() map[string]any {
	return map[string]any{
		"merge_window_seconds": a.window.Seconds(),
		"keep_lone_singles":    a.keepLoneSingles,
		"total_blocks":         a.totalBlocks.Load(),
		"total_incidents":      a.totalIncidents.Load(),
		"dropped_singles":      a.droppedSingles.Load(),
	}
}

func (a *Aggregator) dropSingle(b core.TraceBlock) {
	a.droppedSingles.Add(1)
	a.logger.Debug("msg", "Dropped isolated single-line block",
		"component", "aggregator",
		"convention", b.Convention)
}
