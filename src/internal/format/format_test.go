// FILE: src/internal/format/format_test.go
package format

import (
	"encoding/json"
	"testing"
	"time"

	"tracesift/src/internal/core"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{name: "EmptyDefaultsToRaw", input: "", expected: "raw"},
		{name: "Raw", input: "raw", expected: "raw"},
		{name: "JSON", input: "json", expected: "json"},
		{name: "Unknown", input: "xml", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(tc.input, newTestLogger())
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f.Name())
		})
	}
}

func TestRawFormatter(t *testing.T) {
	f := NewRawFormatter(newTestLogger())
	out, err := f.Format(core.Incident{
		ID:    uuid.New(),
		Block: core.TraceBlock{Text: "panic: boom\ngoroutine 1 [running]:"},
	})
	require.NoError(t, err)
	assert.Equal(t, "panic: boom\ngoroutine 1 [running]:\n\n", string(out))
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(newTestLogger())
	id := uuid.New()
	first := time.Date(2024, 1, 15, 10, 30, 45, 123000000, time.UTC)
	last := first.Add(2 * time.Second)

	t.Run("FullIncident", func(t *testing.T) {
		out, err := f.Format(core.Incident{
			ID: id,
			Block: core.TraceBlock{
				Text:       "ValueError: boom",
				Convention: "traceback",
				MinTS:      &core.Timestamp{Time: first},
				MaxTS:      &core.Timestamp{Time: last},
				Multiline:  true,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, byte('\n'), out[len(out)-1])

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, id.String(), decoded["id"])
		assert.Equal(t, "traceback", decoded["convention"])
		assert.Equal(t, "ValueError: boom", decoded["trace"])
		assert.Equal(t, true, decoded["multiline"])
		assert.Equal(t, "2024-01-15T10:30:45.123Z", decoded["first_seen"])
		assert.Equal(t, "2024-01-15T10:30:47.123Z", decoded["last_seen"])
	})

	t.Run("TimestamplessOmitsSeenFields", func(t *testing.T) {
		out, err := f.Format(core.Incident{
			ID:    id,
			Block: core.TraceBlock{Text: "bare", Convention: "sentence"},
		})
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.NotContains(t, decoded, "first_seen")
		assert.NotContains(t, decoded, "last_seen")
	})
}
