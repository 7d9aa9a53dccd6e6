package shell

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

var errNotNumeric = errors.New("expression does not evaluate to a number")

// Evaluate computes a plain arithmetic expression such as "2 + 3 * (4 - 1)".
// Anything that does not compile or does not produce a finite number is
// returned as an error so the caller can hand the problem to the provider.
func Evaluate(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errNotNumeric
	}

	program, err := expr.Compile(input)
	if err != nil {
		return "", fmt.Errorf("compile expression: %w", err)
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return "", fmt.Errorf("evaluate expression: %w", err)
	}

	switch v := out.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", errNotNumeric
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", errNotNumeric
	}
}
