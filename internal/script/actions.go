package script

import (
	"context"
	"fmt"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/session"
	"github.com/klytics/sheetkit/internal/table"
)

var builtins = map[string]ActionFunc{
	"hide":    columnAction((*session.Session).Hide),
	"show":    columnAction((*session.Session).Show),
	"toggle":  columnAction((*session.Session).ToggleHidden),
	"uncolor": columnAction((*session.Session).ClearColor),
	"label":   labelAction,
	"rename":  renameAction,
	"insert":  insertAction,
	"delete":  deleteAction,
	"move":    moveAction,
	"set":     setAction,
	"sort":    sortAction,
	"unsort":  unsortAction,
	"search":  searchAction,
	"where":   whereAction,
	"color":   colorAction,
}

func requireColumn(step Step) error {
	if step.Column == "" {
		return fmt.Errorf("%s requires a 'column'", step.Action)
	}
	return nil
}

func columnAction(fn func(*session.Session, string) error) ActionFunc {
	return func(_ context.Context, s *session.Session, step Step) error {
		if err := requireColumn(step); err != nil {
			return err
		}
		return fn(s, step.Column)
	}
}

// labelAction sets the header label to value. An empty value restores the
// column name.
func labelAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	return s.Label(step.Column, step.Value)
}

func renameAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	if step.To == "" {
		return fmt.Errorf("rename requires a 'to' name")
	}
	return s.Apply(table.Rename{Old: step.Column, New: step.To})
}

// insertAction adds the column named by column after the column named by
// after. Both may be empty.
func insertAction(_ context.Context, s *session.Session, step Step) error {
	return s.Apply(table.Insert{After: step.After, Name: step.Column})
}

func deleteAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	return s.Apply(table.Delete{Name: step.Column})
}

func moveAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	side, err := table.ParseSide(step.Direction)
	if err != nil {
		return err
	}
	return s.Apply(table.Move{Name: step.Column, Side: side})
}

// setAction edits the cell at the 1-based displayed row.
func setAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	if step.Row < 1 {
		return fmt.Errorf("set requires a 'row' of 1 or more, got %d", step.Row)
	}
	return s.EditViewCell(step.Row-1, step.Column, step.Value)
}

// sortAction sorts by column in the given direction, or advances the sort
// cycle when no direction is given.
func sortAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	if step.Direction == "" {
		return s.ToggleSort(step.Column)
	}
	dir, err := table.ParseDirection(step.Direction)
	if err != nil {
		return err
	}
	return s.SortBy(step.Column, dir)
}

func unsortAction(_ context.Context, s *session.Session, _ Step) error {
	return s.ClearSort()
}

func searchAction(_ context.Context, s *session.Session, step Step) error {
	return s.Search(step.Query)
}

func whereAction(_ context.Context, s *session.Session, step Step) error {
	return s.Where(step.Expr)
}

// colorAction colors column over the filtered rows. Missing colors fall back
// to the configured defaults; a lone from pairs with its opposite.
func colorAction(_ context.Context, s *session.Session, step Step) error {
	if err := requireColumn(step); err != nil {
		return err
	}
	from, to := s.DefaultColors()
	if step.From != "" {
		c, err := palette.Parse(step.From)
		if err != nil {
			return err
		}
		from, to = c, palette.Opposite(c)
	}
	if step.To != "" {
		c, err := palette.Parse(step.To)
		if err != nil {
			return err
		}
		to = c
	}
	return s.SetColors(step.Column, from, to)
}
