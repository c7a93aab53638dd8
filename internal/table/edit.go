package table

import (
	"fmt"
	"strings"
)

// Side is the direction a column moves in.
type Side int

const (
	// Left swaps a column with its left neighbor.
	Left Side = iota
	// Right swaps a column with its right neighbor.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide reads "left" or "right".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "<":
		return Left, nil
	case "right", "r", ">":
		return Right, nil
	}
	return Left, fmt.Errorf("invalid direction %q — use left or right", s)
}

// RenameColumn moves every value under old to name, keeping the column's
// position. Renaming a column to itself is a no-op.
func (d *Dataset) RenameColumn(old, name string) (*Dataset, error) {
	idx := d.Index(old)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, old)
	}
	if name == "" {
		return nil, fmt.Errorf("rename %q: %w", old, ErrEmptyColumnName)
	}
	if old == name {
		return d, nil
	}
	if d.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}

	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	out.Columns[idx] = name
	for i, r := range d.Rows {
		row := r.clone()
		row[name] = row[old]
		delete(row, old)
		out.Rows[i] = row
	}
	return out, nil
}

// InsertColumn adds an empty column right after the column named after. An
// empty after inserts at the front; an empty name picks "New column N".
func (d *Dataset) InsertColumn(after, name string) (*Dataset, error) {
	pos := 0
	if after != "" {
		idx := d.Index(after)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, after)
		}
		pos = idx + 1
	}
	if name == "" {
		name = d.defaultColumnName()
	}
	if d.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}

	columns := make([]string, 0, len(d.Columns)+1)
	columns = append(columns, d.Columns[:pos]...)
	columns = append(columns, name)
	columns = append(columns, d.Columns[pos:]...)

	out := &Dataset{Columns: columns, Rows: make([]Row, len(d.Rows))}
	for i, r := range d.Rows {
		row := r.clone()
		row[name] = Empty()
		out.Rows[i] = row
	}
	return out, nil
}

func (d *Dataset) defaultColumnName() string {
	for n := len(d.Columns) + 1; ; n++ {
		name := fmt.Sprintf("New column %d", n)
		if !d.Has(name) {
			return name
		}
	}
}

// DeleteColumn removes a column from the order and from every row.
func (d *Dataset) DeleteColumn(name string) (*Dataset, error) {
	idx := d.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	columns := make([]string, 0, len(d.Columns)-1)
	columns = append(columns, d.Columns[:idx]...)
	columns = append(columns, d.Columns[idx+1:]...)

	out := &Dataset{Columns: columns, Rows: make([]Row, len(d.Rows))}
	for i, r := range d.Rows {
		row := r.clone()
		delete(row, name)
		out.Rows[i] = row
	}
	return out, nil
}

// MoveColumn swaps a column with its neighbor on the given side. At either
// boundary the dataset is returned unchanged.
func (d *Dataset) MoveColumn(name string, side Side) (*Dataset, error) {
	idx := d.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	target := idx - 1
	if side == Right {
		target = idx + 1
	}
	if target < 0 || target >= len(d.Columns) {
		return d, nil
	}

	// Rows are keyed by name, so only the order changes.
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    d.Rows,
	}
	out.Columns[idx], out.Columns[target] = out.Columns[target], out.Columns[idx]
	return out, nil
}

// EditCell replaces the value at row i, column c with text. Empty text stores
// an empty value.
func (d *Dataset) EditCell(i int, c string, text string) (*Dataset, error) {
	if i < 0 || i >= len(d.Rows) {
		return nil, fmt.Errorf("%w: %d (rows: %d)", ErrIndexOutOfRange, i, len(d.Rows))
	}
	if err := d.mustHave(c); err != nil {
		return nil, err
	}

	out := &Dataset{
		Columns: d.Columns,
		Rows:    append([]Row(nil), d.Rows...),
	}
	row := d.Rows[i].clone()
	row[c] = Text(text)
	out.Rows[i] = row
	return out, nil
}

// State pairs a dataset with the transforms keyed by its column names.
type State struct {
	Data       *Dataset
	Transforms Transforms
}

// Edit is an authoritative change to a State. Apply either returns the new
// state or an error, leaving the receiver state untouched.
type Edit interface {
	Apply(s State) (State, error)
	fmt.Stringer
}

// Rename renames a column and carries its transform to the new name.
type Rename struct {
	Old, New string
}

func (e Rename) Apply(s State) (State, error) {
	d, err := s.Data.RenameColumn(e.Old, e.New)
	if err != nil {
		return s, err
	}
	return State{Data: d, Transforms: s.Transforms.Rekey(e.Old, e.New)}, nil
}

func (e Rename) String() string { return fmt.Sprintf("rename %q -> %q", e.Old, e.New) }

// Insert adds an empty column after another one.
type Insert struct {
	After, Name string
}

func (e Insert) Apply(s State) (State, error) {
	d, err := s.Data.InsertColumn(e.After, e.Name)
	if err != nil {
		return s, err
	}
	return State{Data: d, Transforms: s.Transforms}, nil
}

func (e Insert) String() string { return fmt.Sprintf("insert %q after %q", e.Name, e.After) }

// Delete removes a column and its transform.
type Delete struct {
	Name string
}

func (e Delete) Apply(s State) (State, error) {
	d, err := s.Data.DeleteColumn(e.Name)
	if err != nil {
		return s, err
	}
	return State{Data: d, Transforms: s.Transforms.Drop(e.Name)}, nil
}

func (e Delete) String() string { return fmt.Sprintf("delete %q", e.Name) }

// Move swaps a column with a neighbor.
type Move struct {
	Name string
	Side Side
}

func (e Move) Apply(s State) (State, error) {
	d, err := s.Data.MoveColumn(e.Name, e.Side)
	if err != nil {
		return s, err
	}
	return State{Data: d, Transforms: s.Transforms}, nil
}

func (e Move) String() string { return fmt.Sprintf("move %q %s", e.Name, e.Side) }

// SetCell replaces one cell, addressed by dataset row index.
type SetCell struct {
	Row    int
	Column string
	Value  string
}

func (e SetCell) Apply(s State) (State, error) {
	d, err := s.Data.EditCell(e.Row, e.Column, e.Value)
	if err != nil {
		return s, err
	}
	return State{Data: d, Transforms: s.Transforms}, nil
}

func (e SetCell) String() string {
	return fmt.Sprintf("set row %d %q = %q", e.Row, e.Column, e.Value)
}
