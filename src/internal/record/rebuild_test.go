// FILE: src/internal/record/rebuild_test.go
package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuild(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, Rebuild(nil))
		assert.Nil(t, Rebuild([]string{}))
	})

	t.Run("JoinsContinuationLines", func(t *testing.T) {
		lines := []string{
			"2024-01-15T10:30:45.123Z Exception in thread main: NullPointerException",
			"    at com.example.Class.method(Class.java:123)",
			"    at com.example.Main.run(Main.java:7)",
			"2024-01-15T10:30:46.000Z INFO next request",
		}
		records := Rebuild(lines)
		require.Len(t, records, 2)

		assert.Len(t, records[0].Lines, 3)
		assert.Equal(t, lines[0]+"\n"+lines[1]+"\n"+lines[2], records[0].Text())
		require.NotNil(t, records[0].TS)
		assert.Equal(t, records[0].Lines[0].TS, records[0].TS)
		assert.Nil(t, records[0].Lines[1].TS)

		assert.Len(t, records[1].Lines, 1)
	})

	t.Run("FirstLineAlwaysStartsRecord", func(t *testing.T) {
		records := Rebuild([]string{
			"no timestamp here",
			"still the same record",
			"2024-01-15 10:30:45.123 a new one",
		})
		require.Len(t, records, 2)
		assert.Nil(t, records[0].TS)
		assert.Equal(t, "no timestamp here\nstill the same record", records[0].Text())
		assert.NotNil(t, records[1].TS)
	})

	t.Run("EveryTimestampedLineStartsRecord", func(t *testing.T) {
		records := Rebuild([]string{
			"15-01-2024 10:30:45.123 one",
			"15-01-2024 10:30:45.456 two",
			"15-01-2024 10:30:45.789 three",
		})
		assert.Len(t, records, 3)
	})
}
