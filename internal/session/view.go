package session

import (
	"fmt"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/query"
	"github.com/klytics/sheetkit/internal/table"
)

// Status is a snapshot of the session for display and JSON output.
type Status struct {
	Path       string           `json:"path,omitempty"`
	Sheets     []string         `json:"sheets,omitempty"`
	Sheet      string           `json:"sheet,omitempty"`
	Columns    []string         `json:"columns,omitempty"`
	Rows       int              `json:"rows"`
	Search     string           `json:"search,omitempty"`
	Where      string           `json:"where,omitempty"`
	Sort       *table.SortKey   `json:"sort,omitempty"`
	Transforms table.Transforms `json:"transforms,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Path:       s.path,
		Sheets:     append([]string(nil), s.sheets...),
		Sheet:      s.sheet,
		Search:     s.view.Search,
		Transforms: s.state.Transforms,
		Message:    s.message,
	}
	if s.where != nil {
		st.Where = s.where.String()
	}
	if s.view.Sort != nil {
		k := *s.view.Sort
		st.Sort = &k
	}
	if s.state.Data != nil {
		st.Columns = append([]string(nil), s.state.Data.Columns...)
		st.Rows = s.state.Data.Len()
	}
	return st
}

// Columns returns the dataset columns of the selected sheet, hidden ones
// included.
func (s *Session) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Data == nil {
		return nil
	}
	return append([]string(nil), s.state.Data.Columns...)
}

// Dataset returns the current dataset, or nil before a sheet is selected.
func (s *Session) Dataset() *table.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Data
}

// View projects the current dataset through the transforms and view state.
func (s *Session) View() (*table.ViewTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return nil, s.fail(err)
	}
	return table.Project(s.state.Data, s.state.Transforms, s.view), nil
}

// Search sets the search query. An empty query keeps every row.
func (s *Session) Search(q string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return s.fail(err)
	}
	s.view.Search = q
	return s.ok()
}

// Where sets the row expression filter. An empty source clears it.
func (s *Session) Where(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return s.fail(err)
	}
	if src == "" {
		s.where, s.view.Match = nil, nil
		return s.ok()
	}
	p, err := query.Compile(src)
	if err != nil {
		return s.fail(err)
	}
	s.where, s.view.Match = p, p.Match
	return s.ok()
}

// ToggleSort advances the sort direction of c through none, ascending and
// descending. Other columns lose their direction.
func (s *Session) ToggleSort(c string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireColumn(c); err != nil {
		return s.fail(err)
	}
	s.sortLocked(c, s.state.Transforms.Get(c).SortDirection.Next())
	return s.ok()
}

// SortBy sorts the view by c in direction dir. Unsorted restores the
// dataset order.
func (s *Session) SortBy(c string, dir table.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireColumn(c); err != nil {
		return s.fail(err)
	}
	s.sortLocked(c, dir)
	return s.ok()
}

// ClearSort restores the dataset order.
func (s *Session) ClearSort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return s.fail(err)
	}
	if s.view.Sort != nil {
		s.state.Transforms = s.state.Transforms.SetSort(s.view.Sort.Column, table.Unsorted)
		s.view.Sort = nil
	}
	return s.ok()
}

func (s *Session) sortLocked(c string, dir table.Direction) {
	s.state.Transforms = s.state.Transforms.SetSort(c, dir)
	if dir == table.Unsorted {
		s.view.Sort = nil
		return
	}
	s.view.Sort = &table.SortKey{Column: c, Direction: dir}
}

// Hide hides column c.
func (s *Session) Hide(c string) error {
	return s.transform(c, func(t table.Transforms) table.Transforms { return t.Hide(c) })
}

// Show unhides column c.
func (s *Session) Show(c string) error {
	return s.transform(c, func(t table.Transforms) table.Transforms { return t.Show(c) })
}

// ToggleHidden flips the hidden flag of c.
func (s *Session) ToggleHidden(c string) error {
	return s.transform(c, func(t table.Transforms) table.Transforms { return t.ToggleHidden(c) })
}

// Label sets the header label of c. An empty label restores the column name.
func (s *Session) Label(c, text string) error {
	return s.transform(c, func(t table.Transforms) table.Transforms { return t.SetDisplayName(c, text) })
}

// ClearColor removes the color range of c.
func (s *Session) ClearColor(c string) error {
	return s.transform(c, func(t table.Transforms) table.Transforms { return t.ClearColorRange(c) })
}

func (s *Session) transform(c string, fn func(table.Transforms) table.Transforms) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireColumn(c); err != nil {
		return s.fail(err)
	}
	s.state.Transforms = fn(s.state.Transforms)
	return s.ok()
}

// ToggleColor removes the color range of c if it has one. Otherwise it
// computes one from the rows currently kept by the filters, using the
// default colors.
func (s *Session) ToggleColor(c string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireColumn(c); err != nil {
		return s.fail(err)
	}
	if s.state.Transforms.Get(c).ColorRange != nil {
		s.state.Transforms = s.state.Transforms.ClearColorRange(c)
		return s.ok()
	}
	from, to := s.defaultColors()
	return s.colorLocked(c, from, to)
}

// SetColors computes the color range of c from the filtered rows with the
// given gradient, replacing any existing range.
func (s *Session) SetColors(c string, from, to palette.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireColumn(c); err != nil {
		return s.fail(err)
	}
	return s.colorLocked(c, from, to)
}

func (s *Session) colorLocked(c string, from, to palette.Color) error {
	rows := s.filteredRowsLocked()
	t, err := s.state.Transforms.SetColorRange(c, rows, from, to)
	if err != nil {
		return s.fail(err)
	}
	s.state.Transforms = t
	return s.ok()
}

// DefaultColors returns the gradient used by ToggleColor.
func (s *Session) DefaultColors() (from, to palette.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultColors()
}

func (s *Session) defaultColors() (palette.Color, palette.Color) {
	if s.to != nil {
		return s.from, *s.to
	}
	return s.from, palette.Opposite(s.from)
}

func (s *Session) filteredRowsLocked() []table.Row {
	indices := table.Filter(s.state.Data, s.view)
	rows := make([]table.Row, len(indices))
	for i, idx := range indices {
		rows[i] = s.state.Data.Rows[idx]
	}
	return rows
}

// Apply runs edit against the dataset and transforms. On failure nothing
// changes.
func (s *Session) Apply(edit table.Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return s.fail(err)
	}
	return s.applyLocked(edit)
}

func (s *Session) applyLocked(edit table.Edit) error {
	next, err := edit.Apply(s.state)
	if err != nil {
		return s.fail(err)
	}
	s.state = next

	if s.view.Sort != nil {
		switch e := edit.(type) {
		case table.Rename:
			if e.Old == s.view.Sort.Column {
				s.view.Sort = &table.SortKey{Column: e.New, Direction: s.view.Sort.Direction}
			}
		case table.Delete:
			if e.Name == s.view.Sort.Column {
				s.view.Sort = nil
			}
		}
	}
	s.log.Debug().Stringer("edit", edit).Msg("edit applied")
	return s.ok()
}

// EditViewCell sets the cell in column c of the pos-th displayed row
// (0-based). The row is resolved through the current projection under the
// same lock as the edit, so a reload cannot move the target row.
func (s *Session) EditViewCell(pos int, c, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireSheet(); err != nil {
		return s.fail(err)
	}
	view := table.Project(s.state.Data, s.state.Transforms, s.view)
	if pos < 0 || pos >= len(view.Rows) {
		return s.fail(fmt.Errorf("%w: row %d of %d", table.ErrIndexOutOfRange, pos+1, len(view.Rows)))
	}
	return s.applyLocked(table.SetCell{Row: view.Rows[pos].Index, Column: c, Value: value})
}
