// FILE: src/internal/record/rebuild.go
package record

import (
	"tracesift/src/internal/core"
	"tracesift/src/internal/timestamp"
)

// Rebuild joins raw physical lines into logical records. A line whose
// first alphanumeric character begins a recognized timestamp starts a new
// record; every other line is appended to the previous one. The first
// line always starts a record regardless. Transport layers frequently
// split one structured entry across physical lines; without this step,
// per-line boundary detection collapses multi-line traces into fragments.
func Rebuild(lines []string) []core.LogRecord {
	var records []core.LogRecord
	for _, raw := range lines {
		ll := core.LogLine{Raw: raw}
		if ts, ok := timestamp.Find(raw); ok {
			ll.TS = &ts
		}
		if len(records) == 0 || ll.TS != nil {
			records = append(records, core.LogRecord{
				Lines: []core.LogLine{ll},
				TS:    ll.TS,
			})
			continue
		}
		last := &records[len(records)-1]
		last.Lines = append(last.Lines, ll)
	}
	return records
}
