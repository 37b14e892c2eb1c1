package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func newSumTool() *FunctionTool {
	return NewFunctionTool("calculate_sum", "Calculate the sum of two numbers", sumSchema(),
		func(ctx context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		})
}

func TestFunctionToolCall(t *testing.T) {
	sum := newSumTool()

	result, err := sum.Call(context.Background(), map[string]any{"a": 1.5, "b": 2.5})
	require.NoError(t, err)
	assert.Equal(t, 4.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	sum := newSumTool()

	_, err := sum.Call(context.Background(), map[string]any{"a": 1.5})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "b", vErr.Field)
	assert.Equal(t, "calculate_sum", vErr.Tool)

	_, err = sum.Call(context.Background(), map[string]any{"a": "one", "b": 2.0})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "a", vErr.Field)
}

func TestFunctionToolWrapsExecutionError(t *testing.T) {
	failing := NewFunctionTool("explode", "Always fails", map[string]any{"type": "object"},
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("kaboom")
		})

	_, err := failing.Call(context.Background(), map[string]any{})
	var tErr *ToolError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "EXECUTION_ERROR", tErr.Code)
	assert.Equal(t, "explode", tErr.Tool)
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(newSumTool())

	_, ok := reg.Resolve("calculate_sum")
	assert.True(t, ok)

	_, ok = reg.Resolve("unknown_tool")
	assert.False(t, ok)
}

func TestRegistryDescriptors(t *testing.T) {
	reg := NewRegistry(
		NewFunctionTool("beta", "b", map[string]any{"type": "object"}, nil),
		NewFunctionTool("alpha", "a", map[string]any{"type": "object"}, nil),
	)

	descs := reg.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "alpha", descs[0].Name)
	assert.Equal(t, "beta", descs[1].Name)
}

func TestRegistrySubset(t *testing.T) {
	reg := NewRegistry(newSumTool(), NewFunctionTool("other", "o", map[string]any{"type": "object"}, nil))

	sub := reg.Subset("calculate_sum", "never_registered")
	assert.Equal(t, []string{"calculate_sum"}, sub.Names())
}

func TestValidateArgumentsIntegerAcceptsWholeFloat(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer"}},
		"required":   []any{"n"},
	}

	// JSON unmarshals numbers as float64; whole values must pass.
	assert.NoError(t, ValidateArguments("t", map[string]any{"n": 3.0}, schema))
	assert.Error(t, ValidateArguments("t", map[string]any{"n": 3.5}, schema))
}
