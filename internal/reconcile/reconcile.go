// Package reconcile picks usable numeric values out of heterogeneous,
// partially-missing provider data. Providers return numbers, percentage
// strings, suffixed strings ("1.2B") and sentinels ("N/A", "-") for the same
// metric; everything here degrades to nil instead of erroring.
package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// Reconcile returns the first candidate that parses to a finite float,
// in order. Nil, empty and sentinel values are skipped silently; nil is
// returned when no candidate survives.
func Reconcile(candidates ...any) *float64 {
	for _, c := range candidates {
		if v := asFloat(c); v != nil {
			return v
		}
	}
	return nil
}

// asFloat converts a single raw candidate, nil when unusable
func asFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return finite(float64(v))
	case int64:
		return finite(float64(v))
	case *float64:
		if v == nil {
			return nil
		}
		return finite(*v)
	case string:
		return ParseNumeric(v)
	default:
		return nil
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseNumeric parses a provider-formatted numeric string. Strips '%', ','
// and '$'; trailing K/M/B/T suffixes scale by 1e3/1e6/1e9/1e12. Returns nil
// for sentinels and anything that does not parse to a finite float.
func ParseNumeric(value string) *float64 {
	s := strings.TrimSpace(value)
	if s == "" || s == "N/A" || s == "-" {
		return nil
	}

	s = strings.NewReplacer("%", "", ",", "", "$", "").Replace(s)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return finite(f * multiplier)
}

// ParsePercentage parses a percentage-typed field to a decimal fraction.
// Values with magnitude above 1 are assumed to be quoted in percent
// ("15" means 15% -> 0.15); values at or below 1 pass through unchanged.
// Callers must only apply this to fields that are genuinely
// percentage-typed: a legitimate ratio above 1 (a P/E of 45) would be
// mangled by the magnitude heuristic.
func ParsePercentage(value string) *float64 {
	v := ParseNumeric(value)
	if v == nil {
		return nil
	}
	if math.Abs(*v) > 1 {
		scaled := *v / 100
		return &scaled
	}
	return v
}

// PercentageOf applies the ParsePercentage magnitude heuristic to an
// already-extracted raw candidate (string or number)
func PercentageOf(value any) *float64 {
	v := asFloat(value)
	if v == nil {
		return nil
	}
	if math.Abs(*v) > 1 {
		scaled := *v / 100
		return &scaled
	}
	return v
}

// NumericOf parses an already-extracted raw candidate without the
// percentage heuristic
func NumericOf(value any) *float64 {
	return asFloat(value)
}
