// Package celfilter compiles CEL expressions evaluated against role events.
//
// Expressions see the variables kind, action, role, actor, target,
// target_present and date, all strings except target_present (bool).
//
//	role.startsWith("Temp") && action == "granted"
package celfilter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/rolelog/rolelog-go/pkg/rolelog/event"
)

// ErrNotBool is returned when an expression's result type is not bool.
var ErrNotBool = errors.New("expression did not evaluate to a bool")

// Filter is a compiled expression. The zero value matches nothing.
type Filter struct {
	expr string
	prog cel.Program
}

// Compile parses and type-checks expr. An empty expression returns a nil
// Filter, which matches nothing.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("action", cel.StringType),
		cel.Variable("role", cel.StringType),
		cel.Variable("actor", cel.StringType),
		cel.Variable("target", cel.StringType),
		cel.Variable("target_present", cel.BoolType),
		// "YYYY.MM.DD", for lexical range checks
		cel.Variable("date", cel.StringType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, iss.Err())
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("checking %q: %w", expr, iss.Err())
	}
	if !reflect.DeepEqual(checked.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("checking %q: %w, got %s", expr, ErrNotBool, checked.OutputType())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	return &Filter{expr: expr, prog: prog}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the expression against ev. A nil Filter never matches.
func (f *Filter) Match(ev *event.Event) (bool, error) {
	if f == nil || f.prog == nil || ev == nil {
		return false, nil
	}
	out, _, err := f.prog.Eval(map[string]any{
		"kind":           string(ev.Kind),
		"action":         string(ev.Action),
		"role":           ev.Role,
		"actor":          ev.Actor,
		"target":         ev.Target,
		"target_present": ev.TargetPresent,
		"date":           ev.Timestamp.Date(),
	})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, ErrNotBool
	}
	return b, nil
}
