// Package coerce converts the loosely-typed values that arrive over the
// telemetry stream and the entry gateway into numbers, booleans and strings.
//
// Values are whatever encoding/json produced: nil, bool, float64, string,
// []any or map[string]any. Integer Go types are accepted too so that values
// built in code behave the same as decoded ones.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Number converts v to a float64. The second result is false when v has no
// numeric reading (NaN). nil, false and the empty string read as 0.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// ParseFloat reports range errors with a usable ±Inf.
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return f, true
			}
			return math.NaN(), false
		}
		return f, !math.IsNaN(f)
	}
	return math.NaN(), false
}

// Finite returns v as a number only when it is neither NaN nor infinite.
func Finite(v any) (float64, bool) {
	f, ok := Number(v)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy reports whether v counts as "on".
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		f, ok := Number(x)
		return ok && f != 0
	}
	return true
}

// String renders v for display. nil becomes the empty string.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case float32:
		return FormatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	}
	return "[object]"
}

// FormatNumber prints f with the shortest representation that round-trips:
// 45 -> "45", 1.5 -> "1.5".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
