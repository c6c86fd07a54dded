package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator represents a route comparison operator.
type Operator string

const (
	OpEq    Operator = "equal"
	OpNeq   Operator = "not_equal"
	OpGt    Operator = "greater"
	OpLt    Operator = "less"
	OpGte   Operator = "greater_or_equal"
	OpLte   Operator = "less_or_equal"
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
)

var operatorAliases = map[string]Operator{
	"equal":            OpEq,
	"eq":               OpEq,
	"==":               OpEq,
	"not_equal":        OpNeq,
	"not-equal":        OpNeq,
	"neq":              OpNeq,
	"!=":               OpNeq,
	"greater":          OpGt,
	"gt":               OpGt,
	">":                OpGt,
	"less":             OpLt,
	"lt":               OpLt,
	"<":                OpLt,
	"greater_or_equal": OpGte,
	"greater-or-equal": OpGte,
	"gte":              OpGte,
	">=":               OpGte,
	"less_or_equal":    OpLte,
	"less-or-equal":    OpLte,
	"lte":              OpLte,
	"<=":               OpLte,
	"in":               OpIn,
	"in_set":           OpIn,
	"in-set":           OpIn,
	"not_in":           OpNotIn,
	"not in":           OpNotIn,
	"not_in_set":       OpNotIn,
	"not-in-set":       OpNotIn,
}

// ParseOperator resolves a canonical or symbolic operator name.
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	op, ok := operatorAliases[key]
	if !ok {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return op, nil
}

// Symbol returns the short form used in expressions and diagrams.
func (op Operator) Symbol() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	}
	return string(op)
}

func (op Operator) numeric() bool {
	return op == OpGt || op == OpLt || op == OpGte || op == OpLte
}

// compare applies op to the answers found for a question reference.
// An empty candidate set fails closed except for the two negated operators.
func compare(op Operator, candidates []Answer, v Value) bool {
	switch op {
	case OpEq:
		return equal(candidates, v.Scalar())
	case OpNeq:
		return !equal(candidates, v.Scalar())
	case OpGt, OpLt, OpGte, OpLte:
		return numericCompare(op, candidates, v.Scalar())
	case OpIn:
		return inSet(candidates, v.Items())
	case OpNotIn:
		return !inSet(candidates, v.Items())
	default:
		return false
	}
}

func equal(candidates []Answer, want string) bool {
	for _, a := range candidates {
		for _, got := range a.Values {
			if got == want {
				return true
			}
		}
	}
	return false
}

// toFloat64 parses a submitted or configured value as a number.
func toFloat64(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// numericCompare is true when any individual value satisfies the comparison.
// Values that do not parse as numbers never match.
func numericCompare(op Operator, candidates []Answer, want string) bool {
	rf, ok := toFloat64(want)
	if !ok {
		return false
	}
	for _, a := range candidates {
		for _, raw := range a.Values {
			lf, ok := toFloat64(raw)
			if !ok {
				continue
			}
			var hit bool
			switch op {
			case OpGt:
				hit = lf > rf
			case OpGte:
				hit = lf >= rf
			case OpLt:
				hit = lf < rf
			case OpLte:
				hit = lf <= rf
			}
			if hit {
				return true
			}
		}
	}
	return false
}

// inSet compares each candidate answer as a whole against the set.
func inSet(candidates []Answer, set []string) bool {
	for _, a := range candidates {
		if len(a.Values) == 0 {
			continue
		}
		whole := a.Whole()
		for _, s := range set {
			if s == whole {
				return true
			}
		}
	}
	return false
}
