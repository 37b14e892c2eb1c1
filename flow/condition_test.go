package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericComparisonsOnEqualOperands(t *testing.T) {
	output := map[string]any{"score": 3}

	cases := []struct {
		op   Operation
		want bool
	}{
		{OpGreater, false},
		{OpLess, false},
		{OpGreaterOrEqual, true},
		{OpLessOrEqual, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			got := Evaluate(Condition{Variable: "score", Operation: tc.op, Value: 3}, output)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumericCoercionAcrossTypes(t *testing.T) {
	output := map[string]any{"score": "3.5"}

	assert.True(t, Evaluate(Condition{Variable: "score", Operation: OpGreater, Value: 3}, output))
	assert.False(t, Evaluate(Condition{Variable: "score", Operation: OpLess, Value: 3.5}, output))
}

func TestEquals(t *testing.T) {
	output := map[string]any{"status": "a"}

	assert.True(t, Evaluate(Condition{Variable: "status", Operation: OpEquals, Value: "a"}, output))
	assert.False(t, Evaluate(Condition{Variable: "status", Operation: OpEquals, Value: "b"}, output))
	assert.True(t, Evaluate(Condition{Variable: "status", Operation: OpNotEquals, Value: "b"}, output))

	// Numeric equality coerces: 3 == 3.0 regardless of representation.
	nums := map[string]any{"n": 3}
	assert.True(t, Evaluate(Condition{Variable: "n", Operation: OpEquals, Value: 3.0}, nums))
}

func TestNot(t *testing.T) {
	assert.False(t, Evaluate(Condition{Variable: "flag", Operation: OpNot, Value: nil}, map[string]any{"flag": true}))
	assert.True(t, Evaluate(Condition{Variable: "flag", Operation: OpNot, Value: nil}, map[string]any{"flag": false}))
}

func TestAndOrAlwaysFalse(t *testing.T) {
	outputs := []any{
		map[string]any{"flag": true},
		map[string]any{"flag": false},
		map[string]any{"n": 42},
		"plain string",
	}
	values := []any{true, false, 1, "x", nil}

	for _, out := range outputs {
		for _, v := range values {
			assert.False(t, Evaluate(Condition{Variable: "flag", Operation: OpAnd, Value: v}, out))
			assert.False(t, Evaluate(Condition{Variable: "flag", Operation: OpOr, Value: v}, out))
		}
	}
}

func TestVariableLookup(t *testing.T) {
	output := map[string]any{
		"result": map[string]any{"approved": true, "score": 0.9},
	}

	assert.True(t, Evaluate(Condition{Variable: "result.approved", Operation: OpEquals, Value: true}, output))
	assert.True(t, Evaluate(Condition{Variable: "result.score", Operation: OpGreater, Value: 0.5}, output))

	// Missing variables never match.
	assert.False(t, Evaluate(Condition{Variable: "result.missing", Operation: OpEquals, Value: true}, output))
}

func TestEmptyVariableRefersToOutputItself(t *testing.T) {
	assert.True(t, Evaluate(Condition{Operation: OpEquals, Value: "done"}, "done"))
	assert.True(t, Evaluate(Condition{Operation: OpGreaterOrEqual, Value: 10}, 12))
}

func TestUnknownOperationIsFalse(t *testing.T) {
	assert.False(t, Evaluate(Condition{Variable: "x", Operation: "BETWEEN", Value: 1}, map[string]any{"x": 1}))
}
