package vsmark

import (
	"fmt"
	"math"
	"time"
)

// timestampLayout is the only timestamp form that ever enters a payload:
// ISO 8601 UTC with second precision and a literal Z.
const timestampLayout = "2006-01-02T15:04:05Z"

// timestampParseLayouts are tried in order when normalizing a string
// input. Offsets are converted to UTC; naive values are assumed UTC.
var timestampParseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts a timestamp of any accepted type to the
// canonical ISO 8601 UTC string stored in payloads.
//
// Accepted inputs: an ISO 8601 string (with Z, an offset, or naive), a
// time.Time, or an integer/float epoch in seconds. Sub-second precision
// is truncated. A date-only string maps to midnight UTC.
func NormalizeTimestamp(ts any) (string, error) {
	var t time.Time
	switch v := ts.(type) {
	case nil:
		return "", fmt.Errorf("%w: timestamp is required", ErrValue)
	case time.Time:
		t = v
	case string:
		parsed, err := parseTimestampString(v)
		if err != nil {
			return "", err
		}
		t = parsed
	case int:
		t = time.Unix(int64(v), 0)
	case int64:
		t = time.Unix(v, 0)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: invalid epoch timestamp %v", ErrValue, v)
		}
		sec, frac := math.Modf(v)
		t = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	default:
		return "", fmt.Errorf("%w: unsupported timestamp type %T", ErrInput, ts)
	}
	return t.UTC().Format(timestampLayout), nil
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range timestampParseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp string %q, use ISO 8601", ErrValue, s)
}
