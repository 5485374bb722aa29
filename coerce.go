// File: structargs/coerce.go
package structargs

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// coerceFunc returns the string-to-value conversion used when a scalar
// flag is consumed. Numeric and string primitives convert directly;
// every other type passes through as a string and is interpreted by the
// record constructor's decoding step.
func coerceFunc(t reflect.Type) func(string) (any, error) {
	// time.Duration is int64-kinded but takes "2m"-style input; keep the
	// string so the duration decode hook interprets it, the same path a
	// base-file value takes.
	if t == durationType {
		return func(s string) (any, error) { return s, nil }
	}

	switch t.Kind() {
	case reflect.String:
		return func(s string) (any, error) { return s, nil }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(s string) (any, error) {
			// Base 0 for auto-detection (e.g., "0xFF")
			i, err := strconv.ParseInt(s, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			return i, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(s string) (any, error) {
			u, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid unsigned integer %q", s)
			}
			return u, nil
		}
	case reflect.Float32, reflect.Float64:
		return func(s string) (any, error) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", s)
			}
			return f, nil
		}
	case reflect.Bool:
		return func(s string) (any, error) {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", s)
			}
			return b, nil
		}
	default:
		// Opaque types stay strings; mapstructure interprets them later.
		return func(s string) (any, error) { return s, nil }
	}
}
