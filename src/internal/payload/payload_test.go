// FILE: src/internal/payload/payload_test.go
package payload

import (
	"testing"

	"tracesift/src/internal/core"
	"tracesift/src/internal/record"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func rebuildOne(t *testing.T, lines ...string) core.LogRecord {
	t.Helper()
	records := record.Rebuild(lines)
	require.Len(t, records, 1)
	return records[0]
}

func TestRewrite(t *testing.T) {
	x := New("", newTestLogger())

	t.Run("LiftsStacktraceField", func(t *testing.T) {
		rec := rebuildOne(t,
			`2024-01-15T10:30:45.123Z request failed with data {"exception": "E", "stacktrace": "Traceback (most recent call last):\n  File \"app.py\", line 1, in f\nValueError: x", "other": {"a": 1}}`)
		out, ok := x.Rewrite(rec)
		require.True(t, ok)
		require.Len(t, out.Lines, 3)
		assert.Equal(t, "Traceback (most recent call last):", out.Lines[0].Raw)
		assert.Equal(t, "ValueError: x", out.Lines[2].Raw)

		// Original timestamp carried, offsets zeroed so Body() returns the
		// full line.
		require.NotNil(t, out.Lines[0].TS)
		assert.Equal(t, 0, out.Lines[0].TS.End)
		assert.Equal(t, out.Lines[0].Raw, out.Lines[0].Body())
		require.NotNil(t, out.TS)
		assert.True(t, rec.TS.Time.Equal(out.TS.Time))
	})

	t.Run("FallsBackToExceptionField", func(t *testing.T) {
		rec := rebuildOne(t, `handler died with data {"exception": "NullReferenceException at Svc.Run"}`)
		out, ok := x.Rewrite(rec)
		require.True(t, ok)
		require.Len(t, out.Lines, 1)
		assert.Equal(t, "NullReferenceException at Svc.Run", out.Lines[0].Raw)
		assert.Nil(t, out.TS)
	})

	t.Run("StacktracePreferredOverException", func(t *testing.T) {
		rec := rebuildOne(t, `boom with data {"exception": "short", "stacktrace": "long trace"}`)
		out, ok := x.Rewrite(rec)
		require.True(t, ok)
		assert.Equal(t, "long trace", out.Lines[0].Raw)
	})

	t.Run("NoMarkerLeavesRecordAlone", func(t *testing.T) {
		rec := rebuildOne(t, `plain line {"stacktrace": "S"}`)
		out, ok := x.Rewrite(rec)
		assert.False(t, ok)
		assert.Equal(t, rec, out)
	})

	t.Run("NeitherFieldPresent", func(t *testing.T) {
		rec := rebuildOne(t, `boom with data {"other": {"a": 1}}`)
		out, ok := x.Rewrite(rec)
		assert.False(t, ok)
		assert.Equal(t, rec, out)
	})

	t.Run("MalformedJSONDegradesToPlainText", func(t *testing.T) {
		rec := rebuildOne(t, `boom with data {not json at all}`)
		out, ok := x.Rewrite(rec)
		assert.False(t, ok)
		assert.Equal(t, rec, out)
	})

	t.Run("UnterminatedSpanDegradesToPlainText", func(t *testing.T) {
		rec := rebuildOne(t, `boom with data {"stacktrace": "S"`)
		out, ok := x.Rewrite(rec)
		assert.False(t, ok)
		assert.Equal(t, rec, out)
	})

	t.Run("CustomMarker", func(t *testing.T) {
		custom := New("payload=", newTestLogger())
		rec := rebuildOne(t, `err payload={"stacktrace": "S"}`)
		out, ok := custom.Rewrite(rec)
		require.True(t, ok)
		assert.Equal(t, "S", out.Lines[0].Raw)
	})
}

func TestScanSpan(t *testing.T) {
	t.Run("NestedObjects", func(t *testing.T) {
		text := `with data {"a": {"b": {"c": 1}}} trailing`
		start, end, err := scanSpan(text, 0)
		require.NoError(t, err)
		assert.Equal(t, byte('{'), text[start])
		assert.Equal(t, byte('}'), text[end])
		assert.Equal(t, `{"a": {"b": {"c": 1}}}`, text[start:end+1])
	})

	t.Run("CloserBeforeOpener", func(t *testing.T) {
		_, _, err := scanSpan(`} {"a": 1}`, 0)
		assert.ErrorIs(t, err, ErrUnmatchedCloser)
	})

	t.Run("Unterminated", func(t *testing.T) {
		_, _, err := scanSpan(`{"a": {"b": 1}`, 0)
		assert.ErrorIs(t, err, ErrUnterminated)
	})

	t.Run("NoOpener", func(t *testing.T) {
		_, _, err := scanSpan(`nothing bracketed here`, 0)
		assert.ErrorIs(t, err, errNoOpener)
	})

	t.Run("BracesInStringsNotSpecial", func(t *testing.T) {
		// The counter is textual: a literal '}' inside a string shifts the
		// span. The shifted span then fails the JSON parse upstream.
		text := `{"msg": "}"}`
		start, end, err := scanSpan(text, 0)
		require.NoError(t, err)
		assert.Equal(t, `{"msg": "}`, text[start:end+1])
	})
}
