package citymatch

import (
	"encoding/json"
	"math"
	"strings"
)

// UnknownRegion is the island label used when a record has no usable island.
const UnknownRegion = "Unknown"

// Record is a loosely shaped city object, as decoded from JSON.
// Any field may be missing or of the wrong type; accessors never panic.
type Record map[string]any

// AsRecord reports whether v is an object and returns it as a Record.
// nil, primitives, slices and nil maps are not objects.
func AsRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case Record:
		return r, r != nil
	case map[string]any:
		return Record(r), r != nil
	default:
		return nil, false
	}
}

// Name returns the raw name field, whatever its type.
func (r Record) Name() any {
	return r["name"]
}

// Text returns the field under key if it holds a string.
func (r Record) Text(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Population returns the population field and whether it is a finite number.
// Strings, booleans, NaN and infinities are reported as not present.
func (r Record) Population() (float64, bool) {
	f, ok := toFloat(r["population"])
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Island returns the island field verbatim when it is a string that is not
// blank, and UnknownRegion otherwise.
func (r Record) Island() string {
	s, ok := r.Text("island")
	if !ok || strings.TrimSpace(s) == "" {
		return UnknownRegion
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
