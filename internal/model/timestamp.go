package model

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayout is the seconds part of a trade timestamp.
const timestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp converts "YYYY-MM-DD HH:MM:SS[.mmm]" to epoch milliseconds
// (UTC). The fractional part is read as an integer count of milliseconds.
// Malformed text yields 0, which sorts first.
func ParseTimestamp(text string) uint64 {
	secPart, msPart, hasMillis := strings.Cut(Trim(text), ".")

	t, err := time.ParseInLocation(timestampLayout, secPart, time.UTC)
	if err != nil {
		return 0
	}
	// Dates before the epoch have no uint64 representation.
	if t.Unix() < 0 {
		return 0
	}

	ms := uint64(t.Unix()) * 1000
	if hasMillis {
		if n, err := strconv.ParseUint(msPart, 10, 64); err == nil {
			ms += n
		}
	}
	return ms
}
