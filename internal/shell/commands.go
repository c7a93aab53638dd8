package shell

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/klytics/sheetkit/internal/script"
	"github.com/klytics/sheetkit/internal/table"
)

type command struct {
	usage    string
	help     string
	min      int
	complete func(*Shell) []string
	run      func(ctx context.Context, s *Shell, w io.Writer, args []string, raw string) error
}

var commands map[string]command

func init() {
	columns := func(s *Shell) []string { return s.sess.Columns() }
	sheets := func(s *Shell) []string { return s.sess.Sheets() }

	commands = map[string]command{
		"open":     {usage: "open <file>", help: "open a workbook", min: 1, run: openCmd},
		"reload":   {usage: "reload", help: "re-read the workbook from disk", run: reloadCmd},
		"sheets":   {usage: "sheets", help: "list the sheets of the workbook", run: sheetsCmd},
		"use":      {usage: "use <sheet>", help: "select a sheet", min: 1, complete: sheets, run: useCmd},
		"show":     {usage: "show", help: "draw the current view", run: showCmd},
		"columns":  {usage: "columns", help: "list columns with their transforms", run: columnsCmd},
		"status":   {usage: "status", help: "show file, sheet and filters", run: statusCmd},
		"hide":     {usage: "hide <col>", help: "hide a column", min: 1, complete: columns, run: stepCmd(columnStep("hide"))},
		"show-col": {usage: "show-col <col>", help: "unhide a column", min: 1, complete: columns, run: stepCmd(columnStep("show"))},
		"toggle":   {usage: "toggle <col>", help: "flip whether a column is hidden", min: 1, complete: columns, run: stepCmd(columnStep("toggle"))},
		"label":    {usage: "label <col> [text]", help: "set a header label; no text restores the name", min: 1, complete: columns, run: stepCmd(labelStep)},
		"rename":   {usage: "rename <old> <new>", help: "rename a column", min: 2, complete: columns, run: stepCmd(renameStep)},
		"insert":   {usage: "insert <after|^> [name]", help: "insert an empty column; ^ inserts at the front", min: 1, complete: columns, run: stepCmd(insertStep)},
		"delete":   {usage: "delete <col>", help: "delete a column", min: 1, complete: columns, run: stepCmd(columnStep("delete"))},
		"left":     {usage: "left <col>", help: "move a column one place left", min: 1, complete: columns, run: stepCmd(moveStep("left"))},
		"right":    {usage: "right <col>", help: "move a column one place right", min: 1, complete: columns, run: stepCmd(moveStep("right"))},
		"set":      {usage: "set <row> <col> [value]", help: "edit a cell; row is the displayed row number", min: 2, run: stepCmd(setStep)},
		"sort":     {usage: "sort <col> [asc|desc|none]", help: "sort by a column; no direction cycles none, asc, desc", min: 1, complete: columns, run: stepCmd(sortStep)},
		"unsort":   {usage: "unsort", help: "restore the original row order", run: stepCmd(fixedStep("unsort"))},
		"search":   {usage: "search [text]", help: "keep rows containing text; no text clears", run: stepCmd(searchStep)},
		"where":    {usage: "where [expr]", help: "keep rows matching an expression, e.g. Age > 30; no expr clears", run: stepCmd(whereStep)},
		"color":    {usage: "color <col> [from] [to]", help: "color a numeric column by value", min: 1, complete: columns, run: stepCmd(colorStep)},
		"uncolor":  {usage: "uncolor <col>", help: "remove a column's colors", min: 1, complete: columns, run: stepCmd(columnStep("uncolor"))},
		"run":      {usage: "run <script.yaml>", help: "replay a script", min: 1, run: runCmd},
		"history":  {usage: "history", help: "show command history", run: historyCmd},
		"help":     {usage: "help", help: "show this help", run: helpCmd},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands)+2)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "exit", "quit")
	sort.Strings(names)
	return names
}

// stepCmd runs the step built from the arguments and redraws the view.
func stepCmd(build func(args []string, raw string) (script.Step, error)) func(context.Context, *Shell, io.Writer, []string, string) error {
	return func(ctx context.Context, s *Shell, w io.Writer, args []string, raw string) error {
		step, err := build(args, raw)
		if err != nil {
			return err
		}
		if err := s.exec.Exec(ctx, s.sess, step); err != nil {
			return err
		}
		return s.render(w)
	}
}

func columnStep(action string) func([]string, string) (script.Step, error) {
	return func(args []string, _ string) (script.Step, error) {
		return script.Step{Action: action, Column: args[0]}, nil
	}
}

func fixedStep(action string) func([]string, string) (script.Step, error) {
	return func([]string, string) (script.Step, error) {
		return script.Step{Action: action}, nil
	}
}

func moveStep(side string) func([]string, string) (script.Step, error) {
	return func(args []string, _ string) (script.Step, error) {
		return script.Step{Action: "move", Column: args[0], Direction: side}, nil
	}
}

func labelStep(args []string, _ string) (script.Step, error) {
	return script.Step{Action: "label", Column: args[0], Value: strings.Join(args[1:], " ")}, nil
}

func renameStep(args []string, _ string) (script.Step, error) {
	return script.Step{Action: "rename", Column: args[0], To: strings.Join(args[1:], " ")}, nil
}

func insertStep(args []string, _ string) (script.Step, error) {
	after := args[0]
	if after == "^" {
		after = ""
	}
	return script.Step{Action: "insert", After: after, Column: strings.Join(args[1:], " ")}, nil
}

func setStep(args []string, _ string) (script.Step, error) {
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return script.Step{}, fmt.Errorf("row must be a number, got %q", args[0])
	}
	return script.Step{Action: "set", Row: row, Column: args[1], Value: strings.Join(args[2:], " ")}, nil
}

func sortStep(args []string, _ string) (script.Step, error) {
	step := script.Step{Action: "sort", Column: args[0]}
	if len(args) > 1 {
		step.Direction = args[1]
	}
	return step, nil
}

func searchStep(args []string, _ string) (script.Step, error) {
	return script.Step{Action: "search", Query: strings.Join(args, " ")}, nil
}

// whereStep takes the raw text so string literals keep their quotes.
func whereStep(_ []string, raw string) (script.Step, error) {
	return script.Step{Action: "where", Expr: raw}, nil
}

func colorStep(args []string, _ string) (script.Step, error) {
	step := script.Step{Action: "color", Column: args[0]}
	if len(args) > 1 {
		step.From = args[1]
	}
	if len(args) > 2 {
		step.To = args[2]
	}
	return step, nil
}

func openCmd(ctx context.Context, s *Shell, w io.Writer, args []string, _ string) error {
	if err := s.sess.OpenFile(ctx, args[0]); err != nil {
		return err
	}
	sheets := s.sess.Sheets()
	fmt.Fprintf(w, "Opened %s — %d %s\n", args[0], len(sheets), plural(len(sheets), "sheet"))
	if len(sheets) == 1 {
		if err := s.sess.Select(sheets[0]); err != nil {
			return err
		}
		return s.render(w)
	}
	printSheets(s, w)
	fmt.Fprintln(w, "Pick one with: use <sheet>")
	return nil
}

func reloadCmd(ctx context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	if err := s.sess.Reload(ctx); err != nil {
		return err
	}
	if s.sess.Sheet() == "" {
		printSheets(s, w)
		return nil
	}
	return s.render(w)
}

func sheetsCmd(_ context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	if s.sess.Path() == "" {
		return fmt.Errorf("no workbook open — use: open <file>")
	}
	printSheets(s, w)
	return nil
}

func printSheets(s *Shell, w io.Writer) {
	current := s.sess.Sheet()
	for _, name := range s.sess.Sheets() {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, name)
	}
}

func useCmd(_ context.Context, s *Shell, w io.Writer, args []string, _ string) error {
	if err := s.sess.Select(strings.Join(args, " ")); err != nil {
		return err
	}
	return s.render(w)
}

func showCmd(_ context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	return s.render(w)
}

func columnsCmd(_ context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	st := s.sess.Status()
	if st.Sheet == "" {
		return fmt.Errorf("no sheet selected — use: use <sheet>")
	}
	dim := color.New(color.Faint)
	for i, c := range st.Columns {
		ct := st.Transforms.Get(c)
		var notes []string
		if ct.Hidden {
			notes = append(notes, "hidden")
		}
		if ct.DisplayName != "" {
			notes = append(notes, fmt.Sprintf("label %q", ct.DisplayName))
		}
		if ct.SortDirection != table.Unsorted {
			notes = append(notes, "sorted "+ct.SortDirection.String())
		}
		if r := ct.ColorRange; r != nil {
			notes = append(notes, fmt.Sprintf("colored %s..%s over %g..%g", r.From.Hex(), r.To.Hex(), r.Min, r.Max))
		}
		line := fmt.Sprintf("  %2d  %s", i+1, c)
		if len(notes) > 0 {
			line += "  " + dim.Sprint("("+strings.Join(notes, ", ")+")")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func statusCmd(_ context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	st := s.sess.Status()
	if st.Path == "" {
		fmt.Fprintln(w, "No workbook open")
		return nil
	}
	fmt.Fprintf(w, "File:    %s\n", st.Path)
	if st.Sheet != "" {
		fmt.Fprintf(w, "Sheet:   %s (%d rows, %d columns)\n", st.Sheet, st.Rows, len(st.Columns))
	}
	if st.Search != "" {
		fmt.Fprintf(w, "Search:  %q\n", st.Search)
	}
	if st.Where != "" {
		fmt.Fprintf(w, "Where:   %s\n", st.Where)
	}
	if st.Sort != nil {
		fmt.Fprintf(w, "Sort:    %s %s\n", st.Sort.Column, st.Sort.Direction)
	}
	return nil
}

func runCmd(ctx context.Context, s *Shell, w io.Writer, args []string, _ string) error {
	sc, err := script.Load(args[0])
	if err != nil {
		return err
	}
	results, err := s.exec.Run(ctx, s.sess, sc)
	for _, r := range results {
		mark := color.GreenString("ok")
		if r.Error != "" {
			mark = color.RedString("failed: " + r.Error)
		}
		fmt.Fprintf(w, "  [%d] %s — %s\n", r.Step, r.Name, mark)
	}
	if err != nil {
		return err
	}
	return s.render(w)
}

func historyCmd(_ context.Context, s *Shell, w io.Writer, _ []string, _ string) error {
	for i, cmd := range s.CommandHistory {
		fmt.Fprintf(w, "  %d  %s\n", i+1, cmd)
	}
	return nil
}

func helpCmd(_ context.Context, _ *Shell, w io.Writer, _ []string, _ string) error {
	fmt.Fprintln(w, "Available commands:")
	fmt.Fprintln(w)
	for _, name := range commandNames() {
		cmd, ok := commands[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-28s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintf(w, "  %-28s %s\n", "exit", "exit the shell")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Quote arguments that contain spaces: rename \"Unit price\" Price")
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
