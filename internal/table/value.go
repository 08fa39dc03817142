package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are tried in order when parsing datetime cells. Four-digit-year
// layouts come first because they are unambiguous.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2.1.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// Truthy and falsy spellings accepted for Boolean cells (compared lowercased).
var (
	truthy = map[string]struct{}{"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}}
	falsy  = map[string]struct{}{"false": {}, "f": {}, "no": {}, "n": {}, "0": {}}
)

// AsFloat returns the float64 value of an int64 or float64 cell.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Format renders a cell in its canonical string form. Missing cells render
// as the empty string.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case time.Time:
		return formatTime(t)
	default:
		return fmt.Sprint(t)
	}
}

// formatFloat uses the shortest representation and keeps a trailing ".0" on
// integral values so the column reads back as Float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999999")
	}
	return t.Format("2006-01-02 15:04:05")
}

// ParseInt parses a decimal integer. Integral float spellings such as "3.0"
// are accepted.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int64(f), nil
}

// ParseFloat parses a finite floating-point number.
func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// ParseBool accepts the usual truthy/falsy spellings, case-insensitively.
func ParseBool(s string) (bool, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if _, ok := truthy[k]; ok {
		return true, nil
	}
	if _, ok := falsy[k]; ok {
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

// ParseTime tries each of DateLayouts in order.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognized date/time", s)
}

// Convert coerces a single cell to the target type. nil stays nil.
func Convert(v any, to Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch to {
	case String:
		return Format(v), nil

	case Integer:
		switch t := v.(type) {
		case int64:
			return t, nil
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, fmt.Errorf("cannot convert non-finite value %v to integer", t)
			}
			return int64(t), nil
		case bool:
			if t {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			return ParseInt(t)
		}

	case Float:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int64:
			return float64(t), nil
		case bool:
			if t {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			return ParseFloat(t)
		}

	case Boolean:
		switch t := v.(type) {
		case bool:
			return t, nil
		case int64:
			return t != 0, nil
		case float64:
			return t != 0, nil
		case string:
			return ParseBool(t)
		}

	case Datetime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			return ParseTime(t)
		case int64:
			return time.Unix(0, t).UTC(), nil
		}

	default:
		return nil, fmt.Errorf("unknown type %q", to)
	}
	return nil, fmt.Errorf("cannot convert %T %q to %s", v, Format(v), to)
}

// ConvertColumn coerces every cell of c to the target type. The first failing
// cell aborts the conversion and the column is returned unchanged together
// with the error.
func ConvertColumn(c Column, to Type) (Column, error) {
	cells := make([]any, len(c.Cells))
	for i, v := range c.Cells {
		cv, err := Convert(v, to)
		if err != nil {
			return c, err
		}
		cells[i] = cv
	}
	return Column{Name: c.Name, Type: to, Cells: cells}, nil
}

// Equal reports whether two cells hold the same value. Two missing cells are
// equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
