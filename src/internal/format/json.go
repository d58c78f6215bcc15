// FILE: src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"tracesift/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter renders one incident per line as a JSON object.
type JSONFormatter struct {
	logger *log.Logger
}

// jsonIncident is the wire shape handed to the diagnostics pipeline.
type jsonIncident struct {
	ID         string `json:"id"`
	Convention string `json:"convention"`
	Trace      string `json:"trace"`
	Multiline  bool   `json:"multiline"`
	FirstSeen  string `json:"first_seen,omitempty"`
	LastSeen   string `json:"last_seen,omitempty"`
}

func NewJSONFormatter(logger *log.Logger) *JSONFormatter {
	return &JSONFormatter{logger: logger}
}

func (f *JSONFormatter) Format(inc core.Incident) ([]byte, error) {
	out := jsonIncident{
		ID:         inc.ID.String(),
		Convention: inc.Block.Convention,
		Trace:      inc.Block.Text,
		Multiline:  inc.Block.Multiline,
	}
	if inc.Block.MinTS != nil {
		out.FirstSeen = inc.Block.MinTS.Time.Format(time.RFC3339Nano)
	}
	if inc.Block.MaxTS != nil {
		out.LastSeen = inc.Block.MaxTS.Time.Format(time.RFC3339Nano)
	}
	result, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal incident: %w", err)
	}
	return append(result, '\n'), nil
}

func (f *JSONFormatter) Name() string {
	return "json"
}
