// FILE: src/internal/extract/files_test.go
package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func writeLogGz(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

var panicLines = []string{
	"panic: runtime error: invalid memory address or nil pointer dereference",
	"goroutine 1 [running]:",
	"main.handle(0x0)",
	"\t/srv/app/main.go:42 +0x25",
}

func TestExtractFromFiles(t *testing.T) {
	t.Run("PlainFile", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", panicLines)

		e := newTestExtractor(t, Options{})
		out := e.ExtractFromFiles([]string{path})
		require.Len(t, out, 1)
		assert.Equal(t, strings.Join(panicLines, "\n"), out[0])
	})

	t.Run("GzipFile", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLogGz(t, dir, "app.log.gz", panicLines)

		e := newTestExtractor(t, Options{})
		out := e.ExtractFromFiles([]string{path})
		require.Len(t, out, 1)
		assert.Equal(t, strings.Join(panicLines, "\n"), out[0])
	})

	t.Run("UnreadableFileSkipped", func(t *testing.T) {
		dir := t.TempDir()
		good := writeLog(t, dir, "good.log", panicLines)
		missing := filepath.Join(dir, "does-not-exist.log")

		e := newTestExtractor(t, Options{})
		out := e.ExtractFromFiles([]string{missing, good})
		require.Len(t, out, 1)
	})

	t.Run("CorruptGzipSkipped", func(t *testing.T) {
		dir := t.TempDir()
		bad := writeLog(t, dir, "bad.log.gz", []string{"not gzip at all"})

		e := newTestExtractor(t, Options{})
		out := e.ExtractFromFiles([]string{bad})
		assert.Empty(t, out)
	})

	t.Run("DedupRunsAcrossFiles", func(t *testing.T) {
		dir := t.TempDir()
		a := writeLog(t, dir, "a.log", []string{
			"2024-01-15T10:30:45.123Z SomeException: broke",
			"    at pkg.fn(File.java:1)",
		})
		b := writeLog(t, dir, "b.log", []string{
			"2024-01-15T11:30:45.123Z SomeException: broke",
			"    at pkg.fn(File.java:1)",
		})

		e := newTestExtractor(t, Options{})
		out := e.ExtractFromFiles([]string{a, b})
		require.Len(t, out, 1)
	})

	t.Run("IncidentsFromFilesStructured", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", panicLines)

		e := newTestExtractor(t, Options{})
		incidents := e.IncidentsFromFiles([]string{path})
		require.Len(t, incidents, 1)
		assert.Equal(t, "panicdump", incidents[0].Block.Convention)
	})

	t.Run("NoPaths", func(t *testing.T) {
		e := newTestExtractor(t, Options{})
		assert.Empty(t, e.ExtractFromFiles(nil))
	})
}
