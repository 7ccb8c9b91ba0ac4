package tool

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/expr-lang/expr"
)

// CalculatorTool evaluates arithmetic expressions with a small set of math
// functions. Expressions are compiled and run in a sandboxed environment
// with no access to the host.
type CalculatorTool struct{}

// NewCalculatorTool creates a CalculatorTool.
func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

func (t *CalculatorTool) Name() string { return "calculator" }

func (t *CalculatorTool) Description() string {
	return "Evaluate a mathematical expression. Supports +, -, *, /, %, **, parentheses and functions: sqrt, abs, min, max, floor, ceil, round, pow, log, log10, exp, sin, cos, tan. Constants: pi, e."
}

func (t *CalculatorTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"expression": StringProp("Mathematical expression to evaluate, e.g. \"sqrt(144) + 2 ** 10\""),
	}, "expression")
}

var calculatorEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"pow":   math.Pow,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"round": func(x float64) float64 { return math.Round(x) },
	"min":   func(a, b float64) float64 { return math.Min(a, b) },
	"max":   func(a, b float64) float64 { return math.Max(a, b) },
}

func (t *CalculatorTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	expression, ok := StringArg(args, "expression")
	if !ok || expression == "" {
		return "", fmt.Errorf("expression is required")
	}

	program, err := expr.Compile(expression, expr.Env(calculatorEnv))
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	value, err := expr.Run(program, calculatorEnv)
	if err != nil {
		return "", fmt.Errorf("evaluate expression: %w", err)
	}

	return formatNumber(value), nil
}

// formatNumber renders integer-valued results without a trailing ".0" and
// everything else with full float precision.
func formatNumber(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return fmt.Sprintf("%v", n)
		}
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatFloat(n, 'f', 0, 64)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
