// FILE: src/internal/core/const.go
package core

// Aggregation defaults
const (
	// DefaultMergeWindowSeconds is the timestamp-proximity window within
	// which adjacent trace fragments are folded together.
	DefaultMergeWindowSeconds = 60
)

// TimestampPlaceholder replaces recognized timestamp substrings when
// building deduplication keys.
const TimestampPlaceholder = "<TIMESTAMP>"

// DefaultPayloadMarker introduces a JSON payload embedded in a free-text
// log field.
const DefaultPayloadMarker = "with data {"
