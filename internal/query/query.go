// Package query compiles boolean row expressions such as
// `Age > 30 && Region == "north"` into predicates over table rows.
package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/klytics/sheetkit/internal/table"
)

// Predicate is a compiled row expression.
type Predicate struct {
	source  string
	program *vm.Program
}

var cache sync.Map // source → *Predicate

// Compile parses src as a boolean expression. Columns are available by name,
// and through the row map for names that are not identifiers:
// `row["Unit price"] >= 10`. A column named row takes precedence over the map.
func Compile(src string) (*Predicate, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	if cached, ok := cache.Load(src); ok {
		return cached.(*Predicate), nil
	}

	program, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	p := &Predicate{source: src, program: program}
	cache.Store(src, p)
	return p, nil
}

// String returns the source of the expression.
func (p *Predicate) String() string {
	return p.source
}

// Match evaluates the expression against row. Evaluation errors count as no
// match.
func (p *Predicate) Match(row table.Row) bool {
	ok, err := p.Eval(row)
	return err == nil && ok
}

// Eval evaluates the expression against row and reports evaluation errors.
func (p *Predicate) Eval(row table.Row) (bool, error) {
	out, err := expr.Run(p.program, Env(row))
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q evaluated to %T, expected bool", p.source, out)
	}
	return b, nil
}

// Env builds the evaluation environment of a row. Numbers are float64 and
// empty cells are "". The row map is added unless a column is named row.
func Env(row table.Row) map[string]any {
	values := make(map[string]any, len(row))
	for k, v := range row {
		switch v.Kind() {
		case table.KindEmpty:
			values[k] = ""
		case table.KindString:
			if f, ok := v.Float(); ok {
				values[k] = f
			} else {
				values[k] = v.String()
			}
		default:
			values[k] = v.Interface()
		}
	}
	env := make(map[string]any, len(values)+1)
	for k, v := range values {
		env[k] = v
	}
	if _, ok := env["row"]; !ok {
		env["row"] = values
	}
	return env
}
