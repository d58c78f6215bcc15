// FILE: src/internal/dedup/dedup.go
package dedup

import (
	"sort"
	"sync/atomic"

	"tracesift/src/internal/core"
	"tracesift/src/internal/timestamp"

	"github.com/lixenwraith/log"
)

// Deduper collapses incidents that differ only in their timestamps and
// produces the final stable ordering. Apply is idempotent.
type Deduper struct {
	logger *log.Logger

	// Statistics
	totalSeen    atomic.Uint64
	totalDropped atomic.Uint64
}

func New(logger *log.Logger) *Deduper {
	return &Deduper{logger: logger}
}

// Apply groups incidents by their timestamp-scrubbed text. Within a
// group the incident with the latest max timestamp survives; ties keep
// the first seen, and a timestamp-less incident is never preferred over
// a timestamped duplicate. Survivors are ordered by (min, max)
// timestamp ascending; timestamp-less incidents sort after all
// timestamped ones, retaining their relative input order.
func (d *Deduper) Apply(in []core.Incident) []core.Incident {
	d.totalSeen.Add(uint64(len(in)))

	index := make(map[string]int, len(in))
	survivors := make([]core.Incident, 0, len(in))
	for _, inc := range in {
		key := timestamp.Scrub(inc.Block.Text)
		j, seen := index[key]
		if !seen {
			index[key] = len(survivors)
			survivors = append(survivors, inc)
			continue
		}
		d.totalDropped.Add(1)
		if prefer(inc, survivors[j]) {
			survivors[j] = inc
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i].Block, survivors[j].Block
		switch {
		case a.MinTS == nil && b.MinTS == nil:
			return false // input order
		case a.MinTS == nil:
			return false // timestamp-less after all timestamped
		case b.MinTS == nil:
			return true
		}
		if !a.MinTS.Time.Equal(b.MinTS.Time) {
			return a.MinTS.Time.Before(b.MinTS.Time)
		}
		return a.MaxTS.Time.Before(b.MaxTS.Time)
	})

	if dropped := len(in) - len(survivors); dropped > 0 {
		d.logger.Debug("msg", "Collapsed duplicate incidents",
			"component", "dedup",
			"dropped", dropped,
			"kept", len(survivors))
	}
	return survivors
}

// GetStats returns deduplication statistics.
func (d *Deduper) GetStats() map[string]any {
	return map[string]any{
		"total_seen":    d.totalSeen.Load(),
		"total_dropped": d.totalDropped.Load(),
	}
}

// prefer reports whether cand should replace kept within one dedup group.
func prefer(cand, kept core.Incident) bool {
	if cand.Block.MaxTS == nil {
		return false
	}
	if kept.Block.MaxTS == nil {
		return true
	}
	return kept.Block.MaxTS.Before(cand.Block.MaxTS)
}
