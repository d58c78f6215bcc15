// FILE: src/internal/format/format.go
package format

import (
	"fmt"

	"tracesift/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter renders one extracted incident as a byte slice.
type Formatter interface {
	// Format renders the incident, newline-terminated.
	Format(inc core.Incident) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a Formatter by name. An empty name selects raw.
func New(name string, logger *log.Logger) (Formatter, error) {
	if name == "" {
		name = "raw"
	}
	switch name {
	case "raw":
		return NewRawFormatter(logger), nil
	case "json":
		return NewJSONFormatter(logger), nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
