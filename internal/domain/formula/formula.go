// Package formula evaluates case scoring expressions against a parameter assignment.
package formula

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator turns a scoring expression and a set of named parameters into a score.
type Evaluator interface {
	Evaluate(expression string, params map[string]any) (float64, error)
}

// ExprEvaluator implements Evaluator with expr-lang/expr. Compiled programs
// are cached by source text and shared between goroutines.
type ExprEvaluator struct {
	programs sync.Map // string -> *vm.Program
}

// NewEvaluator creates an expression evaluator with an empty program cache.
func NewEvaluator() *ExprEvaluator {
	return &ExprEvaluator{}
}

// Evaluate runs expression with params bound as variables. The result must be
// a finite number; booleans and strings are rejected.
func (e *ExprEvaluator) Evaluate(expression string, params map[string]any) (float64, error) {
	program, err := e.compile(expression)
	if err != nil {
		return 0, err
	}

	if params == nil {
		params = map[string]any{}
	}
	out, err := expr.Run(program, params)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}

	v, ok := ToFloat(out)
	if !ok {
		return 0, fmt.Errorf("%w: got %T", ErrNonNumeric, out)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotFinite, v)
	}
	return v, nil
}

// Compile checks that expression parses without evaluating it.
func (e *ExprEvaluator) Compile(expression string) error {
	_, err := e.compile(expression)
	return err
}

// Cached returns the number of compiled programs held.
func (e *ExprEvaluator) Cached() int {
	n := 0
	e.programs.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (e *ExprEvaluator) compile(expression string) (*vm.Program, error) {
	src := strings.TrimSpace(expression)
	if src == "" {
		return nil, ErrEmptyFormula
	}
	if p, ok := e.programs.Load(src); ok {
		return p.(*vm.Program), nil
	}

	program, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	actual, _ := e.programs.LoadOrStore(src, program)
	return actual.(*vm.Program), nil
}

// ToFloat converts the numeric kinds produced by expr, JSON and BSON decoding
// to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
