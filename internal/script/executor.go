package script

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/session"
)

// ActionFunc applies one step to a session.
type ActionFunc func(ctx context.Context, s *session.Session, step Step) error

// Executor runs script steps in order through a table of named actions.
type Executor struct {
	actions map[string]ActionFunc
	log     zerolog.Logger
}

// NewExecutor creates an executor with the built-in actions registered.
func NewExecutor(log zerolog.Logger) *Executor {
	e := &Executor{actions: make(map[string]ActionFunc, len(builtins)), log: log}
	for name, fn := range builtins {
		e.actions[name] = fn
	}
	return e
}

// RegisterAction adds or replaces an action.
func (e *Executor) RegisterAction(name string, fn ActionFunc) {
	e.actions[name] = fn
}

// Actions returns the registered action names, sorted.
func (e *Executor) Actions() []string {
	return names(e.actions)
}

// Exec runs a single step.
func (e *Executor) Exec(ctx context.Context, s *session.Session, step Step) error {
	action, ok := e.actions[step.Action]
	if !ok {
		return fmt.Errorf("unknown action %q — registered actions: %s", step.Action, strings.Join(e.Actions(), ", "))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return action(ctx, s, resolve(step))
}

// Run selects the script's sheet, if it names one, and executes every step.
// It stops at the first failing step unless that step has on_failure set to
// continue.
func (e *Executor) Run(ctx context.Context, s *session.Session, sc *Script) ([]StepResult, error) {
	e.log.Debug().Str("script", sc.Name).Int("steps", len(sc.Steps)).Msg("running script")

	if sc.Sheet != "" {
		if err := s.Select(sc.Sheet); err != nil {
			return nil, fmt.Errorf("script %q: %w", sc.Name, err)
		}
	}

	var results []StepResult
	for i, step := range sc.Steps {
		start := time.Now()
		err := e.Exec(ctx, s, step)

		result := StepResult{Step: i + 1, Name: step.String()}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)

		e.log.Debug().
			Int("step", i+1).
			Str("action", step.Action).
			Dur("took", time.Since(start)).
			AnErr("error", err).
			Msg("step done")

		if err != nil {
			if step.continues() {
				e.log.Warn().Int("step", i+1).Err(err).Msg("step failed, continuing")
				continue
			}
			return results, fmt.Errorf("step %d (%s) failed: %w", i+1, step, err)
		}
	}

	return results, nil
}

var interpolationPattern = regexp.MustCompile(`\$\{\{\s*([^}]+?)\s*\}\}`)

// resolve expands ${{ env.NAME }} and ${{ date.today }} in the text fields
// of a step.
func resolve(step Step) Step {
	out := step
	out.Column = interpolate(step.Column)
	out.To = interpolate(step.To)
	out.After = interpolate(step.After)
	out.Query = interpolate(step.Query)
	out.Expr = interpolate(step.Expr)
	out.From = interpolate(step.From)
	out.Value = interpolate(step.Value)
	return out
}

func interpolate(s string) string {
	if !strings.Contains(s, "${{") {
		return s
	}
	return interpolationPattern.ReplaceAllStringFunc(s, func(match string) string {
		inner := interpolationPattern.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		key := inner[1]

		switch {
		case key == "date.today":
			return time.Now().Format("2006-01-02")
		case key == "date.now":
			return time.Now().Format(time.RFC3339)
		case strings.HasPrefix(key, "env."):
			return os.Getenv(strings.TrimPrefix(key, "env."))
		}
		return match
	})
}

func names(actions map[string]ActionFunc) []string {
	out := make([]string, 0, len(actions))
	for name := range actions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
