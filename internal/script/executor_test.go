package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/session"
	"github.com/klytics/sheetkit/internal/table"
)

// staticDecoder serves one workbook with the sheets it was built with.
type staticDecoder map[string]*table.Dataset

func (d staticDecoder) ListSheets([]byte) ([]string, error) {
	var out []string
	for name := range d {
		out = append(out, name)
	}
	return out, nil
}

func (d staticDecoder) LoadSheet(_ []byte, sheet string) (*table.Dataset, error) {
	if ds, ok := d[sheet]; ok {
		return ds, nil
	}
	return nil, errors.New("sheet not found")
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	rows := []table.Row{
		{"Name": table.Text("Al"), "Age": table.Number(30)},
		{"Name": table.Text("Bo"), "Age": table.Number(25)},
		{"Name": table.Text("Cy"), "Age": table.Number(41)},
	}
	ds, err := table.NewDataset([]string{"Name", "Age"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	s := session.New(session.Options{
		Decoder:   staticDecoder{"People": ds},
		Read:      func(string) ([]byte, error) { return []byte("book"), nil },
		Logger:    zerolog.Nop(),
		ColorFrom: palette.White,
	})
	if err := s.OpenFile(context.Background(), "book.xlsx"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseScript(t *testing.T) {
	sc, err := Parse([]byte(`
name: tidy
sheet: People
steps:
  - action: hide
    column: Age
  - action: rename
    column: Name
    to: Who
  - action: set
    row: 2
    column: Who
    value: Bea
    on_failure: continue
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if sc.Name != "tidy" || sc.Sheet != "People" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected script %+v", sc)
	}
	if sc.Steps[2].Row != 2 || sc.Steps[2].OnFailure != "continue" {
		t.Errorf("unexpected step %+v", sc.Steps[2])
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"missing name":       "steps:\n  - action: hide\n",
		"no steps":           "name: x\n",
		"missing action":     "name: x\nsteps:\n  - column: A\n",
		"unknown action":     "name: x\nsteps:\n  - action: explode\n",
		"invalid on_failure": "name: x\nsteps:\n  - action: hide\n    on_failure: maybe\n",
		"bad yaml":           "name: [x\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	_, err := Parse([]byte("name: x\nsteps:\n  - action: explode\n"))
	if err == nil || !strings.Contains(err.Error(), "explode") || !strings.Contains(err.Error(), "hide") {
		t.Errorf("error should name the action and list known ones: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestRunReplaysSteps(t *testing.T) {
	s := newSession(t)
	path := filepath.Join(t.TempDir(), "tidy.yaml")
	src := `
name: tidy
sheet: People
steps:
  - action: sort
    column: Age
    direction: desc
  - action: rename
    column: Name
    to: Who
  - action: set
    row: 1
    column: Who
    value: Cyd
  - action: label
    column: Age
    value: Years
  - action: color
    column: Age
    from: "#000000"
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	results, err := NewExecutor(zerolog.Nop()).Run(context.Background(), s, sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	v, err := s.View()
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Rows[0].Row.Text("Who"); got != "Cyd" {
		t.Errorf("expected the first displayed row to be edited, got %q", got)
	}
	if got := s.Dataset().Rows[2].Text("Who"); got != "Cyd" {
		t.Errorf("expected dataset row 2 to hold the edit, got %q", got)
	}
	if v.Columns[1].Label != "Years" {
		t.Errorf("expected label Years, got %q", v.Columns[1].Label)
	}
	bg := v.Rows[0].Cells[1].Background
	if bg == nil || *bg != palette.White {
		t.Errorf("expected the largest age to get the opposite of black, got %v", bg)
	}
}

func TestRunStopsAtFailure(t *testing.T) {
	s := newSession(t)
	sc := &Script{
		Name:  "bad",
		Sheet: "People",
		Steps: []Step{
			{Action: "hide", Column: "Nope"},
			{Action: "hide", Column: "Age"},
		},
	}

	results, err := NewExecutor(zerolog.Nop()).Run(context.Background(), s, sc)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, table.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "step 1") {
		t.Errorf("error should name the step: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if s.Status().Transforms.Get("Age").Hidden {
		t.Error("second step should not have run")
	}
}

func TestRunContinuesOnFailure(t *testing.T) {
	s := newSession(t)
	sc := &Script{
		Name:  "lenient",
		Sheet: "People",
		Steps: []Step{
			{Action: "color", Column: "Name", OnFailure: "continue"},
			{Action: "hide", Column: "Age"},
		},
	}

	results, err := NewExecutor(zerolog.Nop()).Run(context.Background(), s, sc)
	if err != nil {
		t.Fatalf("Run should not fail with on_failure=continue: %v", err)
	}
	if len(results) != 2 || results[0].Error == "" || results[1].Error != "" {
		t.Errorf("unexpected results %+v", results)
	}
	if !s.Status().Transforms.Get("Age").Hidden {
		t.Error("second step should have run")
	}
}

func TestRunUnknownSheet(t *testing.T) {
	s := newSession(t)
	_, err := NewExecutor(zerolog.Nop()).Run(context.Background(), s, &Script{
		Name:  "x",
		Sheet: "Missing",
		Steps: []Step{{Action: "unsort"}},
	})
	if err == nil {
		t.Fatal("expected an error for a missing sheet")
	}
}

func TestExecUnknownAndCustomAction(t *testing.T) {
	s := newSession(t)
	e := NewExecutor(zerolog.Nop())

	err := e.Exec(context.Background(), s, Step{Action: "nonexistent"})
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("expected unknown action error, got %v", err)
	}

	called := false
	e.RegisterAction("mark", func(ctx context.Context, s *session.Session, step Step) error {
		called = true
		return nil
	})
	if err := e.Exec(context.Background(), s, Step{Action: "mark"}); err != nil || !called {
		t.Errorf("custom action not run: %v", err)
	}
}

func TestActionArgumentChecks(t *testing.T) {
	s := newSession(t)
	if err := s.Select("People"); err != nil {
		t.Fatal(err)
	}
	e := NewExecutor(zerolog.Nop())

	bad := []Step{
		{Action: "hide"},
		{Action: "rename", Column: "Name"},
		{Action: "set", Column: "Name", Row: 0},
		{Action: "move", Column: "Name", Direction: "up"},
		{Action: "sort", Column: "Name", Direction: "sideways"},
		{Action: "color", Column: "Age", From: "notacolor"},
	}
	for _, step := range bad {
		if err := e.Exec(context.Background(), s, step); err == nil {
			t.Errorf("%+v: expected an error", step)
		}
	}
}

func TestInterpolateEnv(t *testing.T) {
	t.Setenv("SHEETKIT_TEST_QUERY", "bo")
	s := newSession(t)
	if err := s.Select("People"); err != nil {
		t.Fatal(err)
	}

	err := NewExecutor(zerolog.Nop()).Exec(context.Background(), s, Step{Action: "search", Query: "${{ env.SHEETKIT_TEST_QUERY }}"})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Status().Search; got != "bo" {
		t.Errorf("expected search bo, got %q", got)
	}
}
