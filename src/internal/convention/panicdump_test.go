// FILE: src/internal/convention/panicdump_test.go
package convention

import (
	"strings"
	"testing"

	"tracesift/src/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicDump_Detect(t *testing.T) {
	p := NewPanicDump()

	testCases := []struct {
		name     string
		lines    []string
		expected bool
	}{
		{
			name:     "PanicMarker",
			lines:    []string{"panic: runtime error: invalid memory address or nil pointer dereference"},
			expected: true,
		},
		{
			name:     "FatalErrorMarker",
			lines:    []string{"fatal error: concurrent map writes"},
			expected: true,
		},
		{
			name:     "GoroutineMarker",
			lines:    []string{"goroutine 1 [running]:"},
			expected: true,
		},
		{
			name:     "PlainLine",
			lines:    []string{"server listening on :8080"},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records := record.Rebuild(tc.lines)
			require.NotEmpty(t, records)
			assert.Equal(t, tc.expected, p.Detect(records[0]))
		})
	}
}

func TestPanicDump_Extract(t *testing.T) {
	p := NewPanicDump()

	t.Run("FullDump", func(t *testing.T) {
		lines := []string{
			"panic: runtime error: invalid memory address or nil pointer dereference",
			"[signal SIGSEGV: segmentation violation code=0x1 addr=0x0 pc=0x4a0e25]",
			"",
			"goroutine 1 [running]:",
			"main.handle(0x0)",
			"\t/srv/app/main.go:42 +0x25",
			"main.main()",
			"\t/srv/app/main.go:12 +0x19",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 1)
		assert.Equal(t, strings.Join(lines, "\n"), blocks[0].Text)
		assert.Equal(t, PanicDumpName, blocks[0].Convention)
		assert.True(t, blocks[0].Multiline)
	})

	t.Run("CreatedByFrames", func(t *testing.T) {
		lines := []string{
			"goroutine 18 [chan receive]:",
			"main.worker(0xc000026060)",
			"\t/srv/app/worker.go:31 +0x8c",
			"created by main.spawn",
			"\t/srv/app/worker.go:12 +0x45",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 1)
		assert.Contains(t, blocks[0].Text, "created by main.spawn")
	})

	t.Run("SingleBlankTolerated", func(t *testing.T) {
		lines := []string{
			"panic: boom",
			"",
			"goroutine 1 [running]:",
			"main.main()",
			"\t/srv/app/main.go:9 +0x11",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 1)
		assert.Equal(t, strings.Join(lines, "\n"), blocks[0].Text)
	})

	t.Run("DoubleBlankTerminates", func(t *testing.T) {
		lines := []string{
			"panic: boom",
			"",
			"",
			"goroutine 1 [running]:",
			"main.main()",
			"\t/srv/app/main.go:9 +0x11",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 2)
		assert.Equal(t, "panic: boom", blocks[0].Text)
		assert.Contains(t, blocks[1].Text, "goroutine 1 [running]:")
	})

	t.Run("NonContinuationAfterBlankTerminates", func(t *testing.T) {
		lines := []string{
			"panic: boom",
			"goroutine 1 [running]:",
			"main.main()",
			"\t/srv/app/main.go:9 +0x11",
			"",
			"server restarting",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 1)
		assert.NotContains(t, blocks[0].Text, "server restarting")
		assert.False(t, strings.HasSuffix(blocks[0].Text, "\n"))
	})

	t.Run("ArgumentFragmentLines", func(t *testing.T) {
		lines := []string{
			"goroutine 5 [select]:",
			"net/http.(*conn).serve(0xc0000a4000, {0x7f3e40, 0xc00001c0a8})",
			"\t/usr/local/go/src/net/http/server.go:1995 +0x60c",
			"  {0xc000010030, 0x2, 0x2}",
		}
		blocks := p.Extract(record.Rebuild(lines))
		require.Len(t, blocks, 1)
		assert.Contains(t, blocks[0].Text, "{0xc000010030, 0x2, 0x2}")
	})
}
