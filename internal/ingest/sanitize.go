package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SanitizeString coerces v into a trimmed string. Returns nil for nil
// input and for values that are empty after trimming. Never fails.
func SanitizeString(v any) *string {
	if v == nil {
		return nil
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case *string:
		if x == nil {
			return nil
		}
		s = *x
	case float64:
		// JSON numbers decode to float64; integral IDs must not grow a
		// decimal point on the way through.
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprintf("%v", x)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// timestampLayouts lists the formats seen across the feed sources, tried
// in order: API timestamps (RFC 3339 with and without zone), RSS pubDates
// (RFC 1123 / RFC 822 variants), and date-only fallbacks.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToISOTimestamp parses v as a timestamp and normalises it to UTC.
// Unparseable or empty input yields nil, never an error.
func ToISOTimestamp(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		u := t.UTC()
		return &u
	}

	s := SanitizeString(v)
	if s == nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// textKeys are the member names under which loosely-shaped feed payloads
// bury their actual text content.
var textKeys = []string{"#text", "value", "name"}

// CoerceText unwraps nested text-bearing containers — arrays take their
// first element, objects take their text-content key — then sanitises the
// result. Terminates on any finite nesting depth.
func CoerceText(v any) *string {
	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return nil
		}
		return CoerceText(x[0])
	case []string:
		if len(x) == 0 {
			return nil
		}
		return CoerceText(x[0])
	case map[string]any:
		for _, key := range textKeys {
			if inner, ok := x[key]; ok {
				return CoerceText(inner)
			}
		}
		return nil
	default:
		return SanitizeString(v)
	}
}
