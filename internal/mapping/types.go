package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/daoism/internal/spex"
)

// Type is the storage type of an attribute.
type Type string

const (
	TypeText      Type = "text"
	TypeInteger   Type = "integer"
	TypeReal      Type = "real"
	TypeTimestamp Type = "timestamp"
	TypeBoolean   Type = "boolean"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeInteger, TypeReal, TypeTimestamp, TypeBoolean:
		return true
	}
	return false
}

// Category returns the default comparison category for t.
func (t Type) Category() spex.Category {
	switch t {
	case TypeInteger, TypeReal:
		return spex.Numeric
	case TypeTimestamp:
		return spex.Temporal
	case TypeText:
		return spex.Ordered
	default:
		return spex.Equality
	}
}

// allows reports whether an attribute of type t may be declared with
// category c.
func (t Type) allows(c spex.Category) bool {
	switch c {
	case spex.Equality:
		return true
	case spex.Ordered:
		return t == TypeText || t == TypeInteger || t == TypeReal
	case spex.Numeric:
		return t == TypeInteger || t == TypeReal
	case spex.Temporal:
		return t == TypeTimestamp
	}
	return false
}

// Parse converts the textual form of a value of type t, as given on a
// command line.
func (t Type) Parse(s string) (any, error) {
	switch t {
	case TypeText:
		return s, nil
	case TypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case TypeReal:
		return strconv.ParseFloat(s, 64)
	case TypeBoolean:
		return strconv.ParseBool(s)
	case TypeTimestamp:
		return parseTime(s)
	}
	return nil, fmt.Errorf("unknown type %q", t)
}

// Coerce converts a decoded value (from YAML or JSON) to the Go type used
// for t: string, int64, float64, bool, or time.Time. nil stays nil.
func (t Type) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && t != TypeText {
		return t.Parse(s)
	}

	switch t {
	case TypeText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case TypeInteger:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case uint64:
			if n > math.MaxInt64 {
				return nil, fmt.Errorf("integer %d out of range", n)
			}
			return int64(n), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%v is not an integer", n)
			}
			return int64(n), nil
		}
	case TypeReal:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeTimestamp:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC(), nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
