// Package schema translates relational rows into index documents.
// Everything in this package is pure: no I/O, no errors, total functions.
package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// BoolInt coerces an enum-like source value to 0 or 1. The source stores
// flags inconsistently across rows (booleans, 0/1 integers, "true"/"false"
// strings), and the index declares the field as integer. Total: any input
// maps to exactly 0 or 1, garbage included.
func BoolInt(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case int:
		return clampBit(int64(val))
	case int32:
		return clampBit(int64(val))
	case int64:
		return clampBit(val)
	case float64:
		return clampBit(int64(val))
	case float32:
		return clampBit(int64(val))
	case []byte:
		return boolIntString(string(val))
	case string:
		return boolIntString(val)
	default:
		return 0
	}
}

func boolIntString(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return 1
	case "false", "0", "":
		return 0
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return clampBit(n)
	}
	return 0
}

func clampBit(n int64) int {
	if n != 0 {
		return 1
	}
	return 0
}

// SecondsOfDay converts an HH:MM:SS time-of-day string to seconds since
// midnight. Unparsable values report ok=false so callers omit the field
// instead of writing a bogus coercion.
func SecondsOfDay(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}

// GeoPoint builds a {lat, lon} object only when both coordinates are present
// and numerically valid. A partial or invalid coordinate yields nil so the
// field is omitted entirely; zero-filled coordinates would corrupt proximity
// queries.
func GeoPoint(lat, lon *float64) map[string]any {
	if lat == nil || lon == nil {
		return nil
	}
	la, lo := *lat, *lon
	if math.IsNaN(la) || math.IsNaN(lo) || math.IsInf(la, 0) || math.IsInf(lo, 0) {
		return nil
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return nil
	}
	return map[string]any{"lat": la, "lon": lo}
}

// JSONText re-serializes a JSON-encoded sub-structure to a string. Shapes
// vary row to row (variations, add-ons, tax structures), so indexing them as
// objects produces mapping conflicts; the document carries an opaque string
// instead. Never fails: unmarshalable input degrades to its string form.
func JSONText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// CombinedText concatenates the embedding input in fixed order, skipping
// empty parts, joined by single spaces. Must be reproducible from the same
// inputs: the sync is idempotent only if this is deterministic.
func CombinedText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
