package table

import "fmt"

// Row maps column names to cell values.
type Row map[string]Value

// Text returns the display text of column c.
func (r Row) Text(c string) string {
	return r[c].String()
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is the data of one sheet: ordered unique column names and rows that
// each carry exactly those columns.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewDataset builds a Dataset from column names and rows. Rows are copied;
// missing cells become empty and keys outside columns are dropped.
func NewDataset(columns []string, rows []Row) (*Dataset, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}

	d := &Dataset{
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, len(rows)),
	}
	for i, src := range rows {
		row := make(Row, len(columns))
		for _, c := range columns {
			row[c] = src[c]
		}
		d.Rows[i] = row
	}
	return d, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the position of column c, or -1.
func (d *Dataset) Index(c string) int {
	for i, name := range d.Columns {
		if name == c {
			return i
		}
	}
	return -1
}

// Has reports whether column c exists.
func (d *Dataset) Has(c string) bool {
	return d.Index(c) >= 0
}

// Value returns the cell at row i, column c.
func (d *Dataset) Value(i int, c string) (Value, error) {
	if i < 0 || i >= len(d.Rows) {
		return Value{}, fmt.Errorf("%w: %d (rows: %d)", ErrIndexOutOfRange, i, len(d.Rows))
	}
	if !d.Has(c) {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
	}
	return d.Rows[i][c], nil
}

func (d *Dataset) mustHave(c string) error {
	if !d.Has(c) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
	}
	return nil
}
