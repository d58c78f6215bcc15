// FILE: src/internal/format/raw.go
package format

import (
	"tracesift/src/internal/core"

	"github.com/lixenwraith/log"
)

// RawFormatter emits the incident's trace text verbatim, with a blank
// separator line so adjacent multi-line incidents stay readable.
type RawFormatter struct {
	logger *log.Logger
}

func NewRawFormatter(logger *log.Logger) *RawFormatter {
	return &RawFormatter{logger: logger}
}

func (f *RawFormatter) Format(inc core.Incident) ([]byte, error) {
	return append([]byte(inc.Block.Text), '\n', '\n'), nil
}

func (f *RawFormatter) Name() string {
	return "raw"
}
