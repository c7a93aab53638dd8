// Package table holds the in-memory model of a sheet and the view-state
// engine that projects it into the table a user sees.
//
// A Dataset is the authoritative data for the selected sheet. Edits never
// mutate a Dataset; they return a new one. Transforms and ViewState describe
// presentation only, and Project combines all three into a ViewTable.
package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the primitive stored in a Value.
type Kind uint8

const (
	// KindEmpty is a missing or blank cell.
	KindEmpty Kind = iota
	// KindString is text.
	KindString
	// KindNumber is a float64.
	KindNumber
	// KindBool is a boolean cell.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value is a single cell value. The zero Value is empty.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Text returns a string value, or the empty value for "".
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// Kind reports what the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell is blank.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// String returns the display text of the value.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.num != 0 {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Float returns the numeric reading of the value. Strings count as numbers
// when their trimmed text parses as a finite float, so "NaN" and "inf" stay
// text.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Interface returns the value as a plain Go value: nil, string, float64 or bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.num != 0
	default:
		return nil
	}
}

// MarshalJSON encodes the value as a JSON string, number, boolean or "".
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindEmpty {
		return []byte(`""`), nil
	}
	return json.Marshal(v.Interface())
}
