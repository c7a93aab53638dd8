package table

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/klytics/sheetkit/internal/palette"
)

// SortKey selects the column the view is sorted by.
type SortKey struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// ViewState is the global, per-render part of the view.
type ViewState struct {
	// Search keeps rows where any column contains it, ignoring case.
	Search string
	// Sort orders the filtered rows. Nil keeps the dataset order.
	Sort *SortKey
	// Match, when set, must also hold for a row to be kept.
	Match func(Row) bool
}

// ViewColumn is a visible column of a ViewTable.
type ViewColumn struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Sort    Direction `json:"sort,omitempty"`
	Colored bool      `json:"colored,omitempty"`
}

// Cell is the presentation of one value.
type Cell struct {
	Value      Value          `json:"value"`
	Text       string         `json:"text"`
	Background *palette.Color `json:"background,omitempty"`
}

// ViewRow is a displayed row. Index is the position of the row in the
// dataset, which stays valid however the view is sorted or filtered.
type ViewRow struct {
	Index int    `json:"index"`
	Row   Row    `json:"-"`
	Cells []Cell `json:"cells"`
}

// ViewTable is the derived table shown to the user. It is never stored.
type ViewTable struct {
	Columns []ViewColumn `json:"columns"`
	Rows    []ViewRow    `json:"rows"`
	// Total is the number of dataset rows before filtering.
	Total int `json:"total"`
}

// Names returns the visible column names in order.
func (v *ViewTable) Names() []string {
	names := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		names[i] = c.Name
	}
	return names
}

// DataRows returns the underlying rows in display order.
func (v *ViewTable) DataRows() []Row {
	rows := make([]Row, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = r.Row
	}
	return rows
}

// Project derives the view of d under transforms and view. It does not
// modify its inputs.
func Project(d *Dataset, transforms Transforms, view ViewState) *ViewTable {
	indices := Filter(d, view)
	if view.Sort != nil && view.Sort.Direction != Unsorted && d.Has(view.Sort.Column) {
		sortIndices(d, indices, *view.Sort)
	}

	out := &ViewTable{Total: d.Len()}
	for _, c := range d.Columns {
		ct := transforms.Get(c)
		if ct.Hidden {
			continue
		}
		out.Columns = append(out.Columns, ViewColumn{
			Name:    c,
			Label:   transforms.Label(c),
			Sort:    ct.SortDirection,
			Colored: ct.ColorRange != nil,
		})
	}

	out.Rows = make([]ViewRow, len(indices))
	for i, idx := range indices {
		row := d.Rows[idx]
		cells := make([]Cell, len(out.Columns))
		for j, col := range out.Columns {
			v := row[col.Name]
			cells[j] = Cell{Value: v, Text: v.String(), Background: background(transforms.Get(col.Name), v)}
		}
		out.Rows[i] = ViewRow{Index: idx, Row: row, Cells: cells}
	}
	return out
}

func background(ct ColumnTransform, v Value) *palette.Color {
	if ct.ColorRange == nil {
		return nil
	}
	f, ok := v.Float()
	if !ok {
		return nil
	}
	c, ok := ct.ColorRange.Color(f)
	if !ok {
		return nil
	}
	return &c
}

// Filter returns the indices of the rows of d kept by the search query and
// the Match predicate, in dataset order.
func Filter(d *Dataset, view ViewState) []int {
	query := strings.ToLower(view.Search)
	indices := make([]int, 0, len(d.Rows))
	for i, row := range d.Rows {
		if query != "" && !rowContains(d.Columns, row, query) {
			continue
		}
		if view.Match != nil && !view.Match(row) {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

func rowContains(columns []string, row Row, query string) bool {
	for _, c := range columns {
		if strings.Contains(strings.ToLower(row[c].String()), query) {
			return true
		}
	}
	return false
}

func sortIndices(d *Dataset, indices []int, key SortKey) {
	col := collate.New(language.Und)
	sort.SliceStable(indices, func(i, j int) bool {
		a := d.Rows[indices[i]][key.Column]
		b := d.Rows[indices[j]][key.Column]
		if key.Direction == Desc {
			return Compare(col, b, a) < 0
		}
		return Compare(col, a, b) < 0
	})
}

// Compare orders two values: numerically when both parse as numbers,
// otherwise by their text under the collator.
func Compare(col *collate.Collator, a, b Value) int {
	fa, okA := a.Float()
	fb, okB := b.Float()
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return col.CompareString(a.String(), b.String())
}
