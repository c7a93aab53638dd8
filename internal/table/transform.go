package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/klytics/sheetkit/internal/palette"
)

// Direction is a sort direction. The zero value means unsorted.
type Direction int

const (
	// Unsorted keeps the dataset order.
	Unsorted Direction = iota
	// Asc sorts smallest first.
	Asc
	// Desc sorts largest first.
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "none"
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Next cycles none → asc → desc → none.
func (d Direction) Next() Direction {
	switch d {
	case Unsorted:
		return Asc
	case Asc:
		return Desc
	default:
		return Unsorted
	}
}

// ParseDirection reads "asc", "desc" or "none".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "up":
		return Asc, nil
	case "desc", "descending", "down":
		return Desc, nil
	case "", "none", "off", "original":
		return Unsorted, nil
	}
	return Unsorted, fmt.Errorf("invalid sort direction %q — use asc, desc or none", s)
}

// ColorRange maps the numeric values of a column onto a gradient from From
// at Min to To at Max.
type ColorRange struct {
	Min  float64       `json:"min"`
	Max  float64       `json:"max"`
	From palette.Color `json:"from"`
	To   palette.Color `json:"to"`
}

// Color returns the background for v, or false when the range is flat.
func (r ColorRange) Color(v float64) (palette.Color, bool) {
	if r.Max == r.Min {
		return palette.Color{}, false
	}
	ratio := (v - r.Min) / (r.Max - r.Min)
	return palette.Interpolate(r.From, r.To, math.Max(0, math.Min(1, ratio))), true
}

// ColumnTransform is the presentation state of one column.
type ColumnTransform struct {
	Hidden        bool        `json:"hidden,omitempty"`
	DisplayName   string      `json:"displayName,omitempty"`
	ColorRange    *ColorRange `json:"colorRange,omitempty"`
	SortDirection Direction   `json:"sortDirection,omitempty"`
}

func (t ColumnTransform) isZero() bool {
	return !t.Hidden && t.DisplayName == "" && t.ColorRange == nil && t.SortDirection == Unsorted
}

// Transforms holds per-column transforms keyed by column name. Methods never
// modify the receiver; they return an updated copy.
type Transforms map[string]ColumnTransform

// Get returns the transform for c. Columns without one get the zero transform.
func (t Transforms) Get(c string) ColumnTransform {
	return t[c]
}

// Label returns the display name of c: its DisplayName, or c itself.
func (t Transforms) Label(c string) string {
	if name := t[c].DisplayName; name != "" {
		return name
	}
	return c
}

func (t Transforms) with(c string, fn func(*ColumnTransform)) Transforms {
	out := make(Transforms, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	ct := out[c]
	fn(&ct)
	if ct.isZero() {
		delete(out, c)
	} else {
		out[c] = ct
	}
	return out
}

// Hide marks c hidden.
func (t Transforms) Hide(c string) Transforms {
	return t.with(c, func(ct *ColumnTransform) { ct.Hidden = true })
}

// Show clears the hidden flag of c.
func (t Transforms) Show(c string) Transforms {
	return t.with(c, func(ct *ColumnTransform) { ct.Hidden = false })
}

// ToggleHidden flips the hidden flag of c.
func (t Transforms) ToggleHidden(c string) Transforms {
	return t.with(c, func(ct *ColumnTransform) { ct.Hidden = !ct.Hidden })
}

// SetDisplayName sets the header label of c. An empty name restores the
// column name.
func (t Transforms) SetDisplayName(c, name string) Transforms {
	return t.with(c, func(ct *ColumnTransform) { ct.DisplayName = name })
}

// SetSort records dir as the sort direction of c and clears it on every
// other column.
func (t Transforms) SetSort(c string, dir Direction) Transforms {
	out := make(Transforms, len(t)+1)
	for k, v := range t {
		v.SortDirection = Unsorted
		if !v.isZero() {
			out[k] = v
		}
	}
	return out.with(c, func(ct *ColumnTransform) { ct.SortDirection = dir })
}

// NumericRange returns the smallest and largest numeric values of c across
// rows. Values that do not parse as numbers are ignored.
func NumericRange(rows []Row, c string) (lo, hi float64, ok bool) {
	for _, r := range rows {
		f, isNum := r[c].Float()
		if !isNum {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	return lo, hi, ok
}

// SetColorRange computes the min and max of c over rows, once, and stores the
// gradient. The range is not recomputed when the data changes later.
func (t Transforms) SetColorRange(c string, rows []Row, from, to palette.Color) (Transforms, error) {
	lo, hi, ok := NumericRange(rows, c)
	if !ok {
		return t, fmt.Errorf("%w in column %q", ErrNoNumericValues, c)
	}
	r := &ColorRange{Min: lo, Max: hi, From: from, To: to}
	return t.with(c, func(ct *ColumnTransform) { ct.ColorRange = r }), nil
}

// ClearColorRange removes the gradient of c.
func (t Transforms) ClearColorRange(c string) Transforms {
	return t.with(c, func(ct *ColumnTransform) { ct.ColorRange = nil })
}

// Rekey moves the transform of old to name.
func (t Transforms) Rekey(old, name string) Transforms {
	ct, ok := t[old]
	if !ok || old == name {
		return t
	}
	out := make(Transforms, len(t))
	for k, v := range t {
		if k != old {
			out[k] = v
		}
	}
	out[name] = ct
	return out
}

// Drop removes the transform of c.
func (t Transforms) Drop(c string) Transforms {
	if _, ok := t[c]; !ok {
		return t
	}
	out := make(Transforms, len(t))
	for k, v := range t {
		if k != c {
			out[k] = v
		}
	}
	return out
}

// Prune keeps only the transforms of the given columns.
func (t Transforms) Prune(columns []string) Transforms {
	keep := make(map[string]bool, len(columns))
	for _, c := range columns {
		keep[c] = true
	}
	out := make(Transforms, len(t))
	for k, v := range t {
		if keep[k] {
			out[k] = v
		}
	}
	return out
}
