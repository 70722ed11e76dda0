package runner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Packet geometry used when converting between packets, bytes and link-layer bits.
const (
	BitsPerByte         = 8
	PacketSize          = 1460 // payload bytes per packet
	LinkLayerPacketSize = 1500 // payload plus 40 bytes of headers
)

// Table is a flat key/value configuration table as decoded from TOML or YAML.
// Values are scalars (string, int64, float64, bool), lists ([]any) or nested Tables.
type Table map[string]any

// Has reports whether key is present.
func (t Table) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Clone returns a deep copy of t: nested Tables and lists are copied too.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies Tables and lists inside v. Scalars are returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case Table:
		return x.Clone()
	case map[string]any:
		return Table(x).Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Normalize converts decoder output into the value shapes Table documents:
// nested maps become Tables, every integer width becomes int64 and float32 becomes float64.
func Normalize(v any) any {
	switch x := v.(type) {
	case Table:
		out := make(Table, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(Table, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(Table, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// AsTable returns v as a Table.
func AsTable(v any) (Table, error) {
	switch x := v.(type) {
	case Table:
		return x, nil
	case map[string]any:
		return Table(x), nil
	default:
		return nil, fmt.Errorf("%w: expected a table, got %T", ErrBadValue, v)
	}
}

// AsList returns v as a list and whether it was one.
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// Float converts a numeric or numeric-string value to float64.
func Float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrBadValue, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T", ErrBadValue, v)
	}
}

// Int converts a value to int64. Floats are truncated toward zero;
// strings must hold an integer literal.
func Int(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadValue, x)
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadValue, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected an integer, got %T", ErrBadValue, v)
	}
}

// Bool converts a bool or a boolean string ("true", "false", "1", "0").
func Bool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrBadValue, x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: expected a boolean, got %T", ErrBadValue, v)
	}
}

// String returns v if it is a string.
func String(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected a string, got %T", ErrBadValue, v)
	}
	return s, nil
}
