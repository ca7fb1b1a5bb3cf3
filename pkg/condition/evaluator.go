// Package condition evaluates clause inclusion predicates against a
// deal's variable map.
package condition

import (
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"
)

// Operator names supported by Evaluate.
const (
	OpEquals     = "equals"
	OpNotEquals  = "not_equals"
	OpExists     = "exists"
	OpNotExists  = "not_exists"
	OpTruthy     = "truthy"
	OpFalsy      = "falsy"
	OpContains   = "contains"
	OpInArray    = "in_array"
	OpExpression = "expression"
)

// Evaluator evaluates condition lists. The zero value is not usable;
// construct with NewEvaluator so expression conditions share one
// compiled-program cache.
type Evaluator struct {
	cel *celEvaluator
}

// NewEvaluator returns an evaluator with CEL expression support.
func NewEvaluator() (*Evaluator, error) {
	c, err := newCELEvaluator()
	if err != nil {
		return nil, fmt.Errorf("condition: init expression environment: %w", err)
	}
	return &Evaluator{cel: c}, nil
}

// Evaluate reports whether every condition holds against vars. An
// empty condition list is vacuously true. Conditions are conjoined;
// there is no OR operator, alternate clauses with different condition
// lists serve that case.
func (e *Evaluator) Evaluate(conds []clause.Condition, vars map[string]any) bool {
	ok, _ := e.EvaluateWithWarnings(conds, vars)
	return ok
}

// EvaluateWithWarnings behaves like Evaluate and additionally reports
// human-readable warnings for conditions that fell through to the
// permissive default (unknown operators, failed expressions). Unknown
// operators evaluate true so a typo never drops a clause silently from
// the document, but the warning lets validation surface it.
func (e *Evaluator) EvaluateWithWarnings(conds []clause.Condition, vars map[string]any) (bool, []string) {
	var warnings []string
	for _, c := range conds {
		ok, warn := e.evalOne(c, vars)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if !ok {
			return false, warnings
		}
	}
	return true, warnings
}

func (e *Evaluator) evalOne(c clause.Condition, vars map[string]any) (bool, string) {
	raw, present := vars[c.Variable]
	val := clause.FromAny(raw)
	want := clause.FromAny(c.Value)

	switch c.Type {
	case OpEquals:
		return present && val.LooseEquals(want), ""
	case OpNotEquals:
		return !present || !val.LooseEquals(want), ""
	case OpExists:
		return present, ""
	case OpNotExists:
		return !present, ""
	case OpTruthy:
		return present && val.Truthy(), ""
	case OpFalsy:
		return !present || !val.Truthy(), ""
	case OpContains:
		return present && val.Contains(want), ""
	case OpInArray:
		return present && val.MemberOf(want), ""
	case OpExpression:
		src, ok := c.Value.(string)
		if !ok {
			return true, fmt.Sprintf("expression condition value is %T, want string", c.Value)
		}
		res, err := e.cel.eval(src, vars)
		if err != nil {
			return true, fmt.Sprintf("expression %q failed: %v", src, err)
		}
		return res, ""
	default:
		return true, fmt.Sprintf("unknown condition operator %q on variable %q", c.Type, c.Variable)
	}
}
