// FILE: src/internal/extract/files.go
package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"tracesift/src/internal/core"

	"github.com/klauspost/compress/gzip"
)

// maxLineBytes bounds a single physical log line.
const maxLineBytes = 1024 * 1024

// ExtractFromFiles reads each file as newline-delimited records, runs
// the pipeline per file, then runs the dedup/order pass once over the
// combined set. An unreadable file is logged and skipped; the remaining
// files are still processed. Files ending in .gz are decompressed
// transparently.
func (e *Extractor) ExtractFromFiles(paths []string) []string {
	return texts(e.IncidentsFromFiles(paths))
}

// IncidentsFromFiles is ExtractFromFiles with structured results.
func (e *Extractor) IncidentsFromFiles(paths []string) []core.Incident {
	var all []core.Incident
	for _, path := range paths {
		lines, err := readLines(path)
		if err != nil {
			e.logger.Warn("msg", "Skipping unreadable file",
				"component", "extractor",
				"path", path,
				"error", err)
			continue
		}
		all = append(all, e.fold(lines)...)
	}
	return e.ded.Apply(all)
}

// readLines loads one newline-delimited log file, decompressing .gz
// files on the fly.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip open failed: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return lines, nil
}
