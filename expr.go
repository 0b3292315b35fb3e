/*
Copyright © 2018 the Heightmap authors.
This file is part of Heightmap.

Heightmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Heightmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Heightmap.  If not, see <http://www.gnu.org/licenses/>.
*/

package heightmap

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"
)

// ElevTransform applies a user-supplied arithmetic expression to each
// valid source elevation, typically for unit conversion. Within the
// expression the source elevation is available as the variable 'z',
// so for example "z * 0.3048" converts feet to meters.
type ElevTransform struct {
	text string
	expr *govaluate.EvaluableExpression
}

// NewElevTransform compiles an elevation transform expression and
// adds a set of default functions. Default functions include:
//
// 'abs(x)' which returns the absolute value of x.
//
// 'min(x, y)' and 'max(x, y)' which return the smaller and larger of
// their two arguments.
//
// 'round(x)' which rounds to the nearest integer, half away from zero.
func NewElevTransform(expression string) (*ElevTransform, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("heightmap: empty elevation expression")
	}
	defaultFuncs := map[string]govaluate.ExpressionFunction{
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("heightmap: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			return (float64)(math.Abs(arg[0].(float64))), nil
		},
		"min": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("heightmap: got %d arguments for function 'min', but needs 2", len(args))
			}
			return (float64)(math.Min(args[0].(float64), args[1].(float64))), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("heightmap: got %d arguments for function 'max', but needs 2", len(args))
			}
			return (float64)(math.Max(args[0].(float64), args[1].(float64))), nil
		},
		"round": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("heightmap: got %d arguments for function 'round', but needs 1", len(arg))
			}
			return (float64)(math.Round(arg[0].(float64))), nil
		},
	}

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, defaultFuncs)
	if err != nil {
		return nil, fmt.Errorf("heightmap: while compiling elevation expression %q: %v", expression, err)
	}
	return &ElevTransform{text: expression, expr: expr}, nil
}

// Apply evaluates the expression for one elevation value.
func (t *ElevTransform) Apply(z float64) (float64, error) {
	result, err := t.expr.Evaluate(map[string]interface{}{"z": z})
	if err != nil {
		return 0, fmt.Errorf("heightmap: while evaluating elevation expression %q: %v", t.text, err)
	}
	v, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("heightmap: elevation expression %q returned non-numeric result %#v", t.text, result)
	}
	return v, nil
}

// String returns the expression text.
func (t *ElevTransform) String() string { return t.text }
