// Package view implements "sheetkit view", which renders one sheet with
// transforms given as flags or a script.
package view

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/script"
)

type options struct {
	sheet  string
	hide   []string
	labels []string
	sort   string
	search string
	where  string
	colors []string
	script string
}

// NewCommand returns the view command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "view <file.xlsx>",
		Short: "Render a sheet as a table",
		Long: `Render a sheet of a workbook as a table.

Transforms are applied in this order: the script, then --hide, --label,
--sort, --search, --where and --color. The file is never modified.

Examples:
  sheetkit view sales.xlsx --sheet Q3 --sort Revenue:desc
  sheetkit view sales.xlsx --hide Notes --where 'Revenue > 1000' --color Revenue
  sheetkit view sales.xlsx --color 'Margin=#FFFFFF:#2E7D32' --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet to show (default: the first)")
	cmd.Flags().StringSliceVar(&opts.hide, "hide", nil, "Columns to hide")
	cmd.Flags().StringArrayVar(&opts.labels, "label", nil, "Header label as column=text (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort as column[:asc|desc]")
	cmd.Flags().StringVar(&opts.search, "search", "", "Keep rows containing this text")
	cmd.Flags().StringVar(&opts.where, "where", "", "Keep rows matching an expression, e.g. 'Age > 30'")
	cmd.Flags().StringArrayVar(&opts.colors, "color", nil, "Color a numeric column as column[=from[:to]] (repeatable)")
	cmd.Flags().StringVar(&opts.script, "script", "", "YAML script to replay first")
	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	ctx := cmd.Context()
	jsonFlag, _ := cmd.Flags().GetBool("json")

	steps, err := flagSteps(opts)
	if err != nil {
		return err
	}
	var sc *script.Script
	if opts.script != "" {
		if sc, err = script.Load(opts.script); err != nil {
			return err
		}
	}

	cfg, err := app.Config(ctx)
	if err != nil {
		return err
	}
	log := *zerolog.Ctx(ctx)
	sess, err := app.NewSession(cfg, log)
	if err != nil {
		return err
	}
	if err := app.Open(ctx, sess, path, jsonFlag); err != nil {
		return err
	}

	sheet := opts.sheet
	if sheet == "" && (sc == nil || sc.Sheet == "") {
		names := sess.Sheets()
		if len(names) == 0 {
			return fmt.Errorf("%s has no sheets", path)
		}
		sheet = names[0]
	}
	if sheet != "" {
		if err := sess.Select(sheet); err != nil {
			return err
		}
	}

	exec := script.NewExecutor(log)
	if sc != nil {
		if _, err := exec.Run(ctx, sess, sc); err != nil {
			return err
		}
	}
	for _, step := range steps {
		if err := exec.Exec(ctx, sess, step); err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
	}

	v, err := sess.View()
	if err != nil {
		return err
	}
	if jsonFlag {
		return output.WriteJSON(cmd.OutOrStdout(), "view", output.ViewJSON(v))
	}

	var buf bytes.Buffer
	if err := output.RenderTable(&buf, v, app.TableOptions(cfg)); err != nil {
		return err
	}
	return output.Show(cmd.OutOrStdout(), buf.String(), cfg.Output.Pager)
}

// flagSteps turns the transform flags into script steps.
func flagSteps(opts options) ([]script.Step, error) {
	var steps []script.Step
	for _, c := range opts.hide {
		steps = append(steps, script.Step{Action: "hide", Column: c})
	}
	for _, l := range opts.labels {
		c, text, ok := strings.Cut(l, "=")
		if !ok || c == "" {
			return nil, fmt.Errorf("invalid --label %q — expected column=text", l)
		}
		steps = append(steps, script.Step{Action: "label", Column: c, Value: text})
	}
	if opts.sort != "" {
		step, err := parseSort(opts.sort)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if opts.search != "" {
		steps = append(steps, script.Step{Action: "search", Query: opts.search})
	}
	if opts.where != "" {
		steps = append(steps, script.Step{Action: "where", Expr: opts.where})
	}
	for _, c := range opts.colors {
		step, err := parseColor(c)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// parseSort reads column[:direction]. The last colon separates the
// direction so column names may contain colons.
func parseSort(s string) (script.Step, error) {
	c, dir := s, "asc"
	if i := strings.LastIndex(s, ":"); i >= 0 {
		switch strings.ToLower(s[i+1:]) {
		case "asc", "desc", "none":
			c, dir = s[:i], s[i+1:]
		}
	}
	if c == "" {
		return script.Step{}, fmt.Errorf("invalid --sort %q — expected column[:asc|desc]", s)
	}
	return script.Step{Action: "sort", Column: c, Direction: dir}, nil
}

// parseColor reads column[=from[:to]].
func parseColor(s string) (script.Step, error) {
	c, colors, _ := strings.Cut(s, "=")
	if c == "" {
		return script.Step{}, fmt.Errorf("invalid --color %q — expected column[=from[:to]]", s)
	}
	step := script.Step{Action: "color", Column: c}
	if colors != "" {
		step.From, step.To, _ = strings.Cut(colors, ":")
	}
	return step, nil
}
