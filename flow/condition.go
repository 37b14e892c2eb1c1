package flow

import (
	"encoding/json"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// Operation is a condition operator.
type Operation string

const (
	OpEquals         Operation = "EQUALS"
	OpNotEquals      Operation = "NOT_EQUALS"
	OpGreater        Operation = "GREATER"
	OpLess           Operation = "LESS"
	OpGreaterOrEqual Operation = "GREATER_OR_EQUAL"
	OpLessOrEqual    Operation = "LESS_OR_EQUAL"
	OpNot            Operation = "NOT"

	// OpAnd and OpOr are accepted syntactically but always evaluate to
	// false. This is a known limitation of the condition language, kept as
	// is; gate composite logic in the producing step instead.
	OpAnd Operation = "AND"
	OpOr  Operation = "OR"
)

// Evaluate applies a condition to a step output. The variable is resolved as
// a path into the output's JSON form; an empty variable refers to the output
// itself. Numeric comparisons coerce both operands to float64; values that
// cannot be coerced fail the comparison rather than erroring.
func Evaluate(c Condition, output any) bool {
	val := lookupVariable(c.Variable, output)

	switch c.Operation {
	case OpEquals:
		return equals(val, c.Value)
	case OpNotEquals:
		return !equals(val, c.Value)
	case OpGreater:
		l, r, ok := numericOperands(val, c.Value)
		return ok && l > r
	case OpLess:
		l, r, ok := numericOperands(val, c.Value)
		return ok && l < r
	case OpGreaterOrEqual:
		l, r, ok := numericOperands(val, c.Value)
		return ok && l >= r
	case OpLessOrEqual:
		l, r, ok := numericOperands(val, c.Value)
		return ok && l <= r
	case OpNot:
		b, err := cast.ToBoolE(val)
		return err == nil && !b
	case OpAnd, OpOr:
		return false
	default:
		return false
	}
}

func lookupVariable(variable string, output any) any {
	if variable == "" {
		return output
	}

	data, err := json.Marshal(output)
	if err != nil {
		return nil
	}
	result := gjson.GetBytes(data, variable)
	if !result.Exists() {
		return nil
	}
	return result.Value()
}

func equals(a, b any) bool {
	if l, r, ok := numericOperands(a, b); ok {
		return l == r
	}
	return cast.ToString(a) == cast.ToString(b)
}

func numericOperands(a, b any) (float64, float64, bool) {
	l, errL := cast.ToFloat64E(a)
	r, errR := cast.ToFloat64E(b)
	if errL != nil || errR != nil {
		return 0, 0, false
	}
	return l, r, true
}
