// FILE: src/internal/timestamp/recognize.go
package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tracesift/src/internal/core"
)

// Grammar names, in trial order.
const (
	GrammarDayFirst = "day-first"
	GrammarISOT     = "iso-t"
	GrammarISOSpace = "iso-space"
)

// grammar is one literal timestamp format. The regex is anchored and
// applied at the line's first alphanumeric character; capture groups are
// day, month, year (or year, month, day), hour, minute, second, fraction
// and an optional zone designator.
type grammar struct {
	name     string
	re       *regexp.Regexp
	dayFirst bool
}

// Trial order is fixed: first match wins.
var grammars = []grammar{
	{
		name:     GrammarDayFirst,
		re:       regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4}) (\d{2}):(\d{2}):(\d{2})\.(\d{1,9})`),
		dayFirst: true,
	},
	{
		name: GrammarISOT,
		re:   regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})\.(\d{1,9})(Z?)`),
	},
	{
		name: GrammarISOSpace,
		re:   regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}) (\d{2}):(\d{2}):(\d{2})\.(\d{1,9})`),
	},
}

// scrubRe matches any recognized timestamp shape anywhere in a text, for
// deduplication key construction.
var scrubRe = regexp.MustCompile(
	`\d{2,4}-\d{2}-\d{2,4}[T ]\d{2}:\d{2}:\d{2}\.\d{1,9}Z?`)

// Find locates a leading timestamp in one line. Matching starts at the
// first alphanumeric character; grammars are tried in fixed order and the
// first match wins. The result is atomic: either a fully populated
// timestamp or nothing. An unparsable match degrades to "not found".
func Find(line string) (core.Timestamp, bool) {
	offset := firstAlnum(line)
	if offset < 0 {
		return core.Timestamp{}, false
	}
	if embeddedInMetadata(line[:offset]) {
		return core.Timestamp{}, false
	}
	rest := line[offset:]
	for _, g := range grammars {
		m := g.re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		t, ok := g.assemble(m)
		if !ok {
			return core.Timestamp{}, false
		}
		return core.Timestamp{
			Time:    t,
			Grammar: g.name,
			Raw:     m[0],
			Start:   offset,
			End:     offset + len(m[0]),
		}, true
	}
	return core.Timestamp{}, false
}

// Scrub replaces every recognized timestamp substring with the fixed
// placeholder. Used to build keys that collapse timestamp-only
// differences between otherwise identical traces.
func Scrub(text string) string {
	return scrubRe.ReplaceAllString(text, core.TimestampPlaceholder)
}

// Format renders an instant in the named grammar, for round-trip checks
// and synthetic test input. Unknown grammar names fall back to iso-t.
func Format(name string, t time.Time) string {
	switch name {
	case GrammarDayFirst:
		return t.UTC().Format("02-01-2006 15:04:05.000")
	case GrammarISOSpace:
		return t.UTC().Format("2006-01-02 15:04:05.000")
	default:
		return t.UTC().Format("2006-01-02T15:04:05.000000Z")
	}
}

// assemble converts capture groups into a UTC instant, truncating the
// fractional component to microsecond precision. Out-of-range components
// fail the whole match.
func (g grammar) assemble(m []string) (time.Time, bool) {
	var year, month, day int
	if g.dayFirst {
		day = atoi(m[1])
		month = atoi(m[2])
		year = atoi(m[3])
	} else {
		year = atoi(m[1])
		month = atoi(m[2])
		day = atoi(m[3])
	}
	hour := atoi(m[4])
	minute := atoi(m[5])
	sec := atoi(m[6])
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}
	nanos := fractionNanos(m[7])
	// Absent a zone, UTC is assumed; a trailing Z is UTC by definition.
	return time.Date(year, time.Month(month), day, hour, minute, sec, nanos, time.UTC), true
}

// fractionNanos converts a 1-9 digit fraction to nanoseconds, truncating
// (never rounding) anything beyond 6 digits.
func fractionNanos(frac string) int {
	if len(frac) > 6 {
		frac = frac[:6]
	}
	n := atoi(frac)
	for i := len(frac); i < 9; i++ {
		n *= 10
	}
	return n
}

func firstAlnum(line string) int {
	for i, r := range line {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return i
		}
	}
	return -1
}

// embeddedInMetadata reports whether the non-alphanumeric prefix before a
// candidate marks it as a field value inside structured metadata (for
// example a resource-creation timestamp) rather than the record's own
// leading timestamp.
func embeddedInMetadata(prefix string) bool {
	return strings.ContainsAny(prefix, `"'=:`)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
