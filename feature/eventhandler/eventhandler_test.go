package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/pipeline"
)

func TestOnStageCallbackFiresForItsStageOnly(t *testing.T) {
	var nodeCompletions int
	f := New(WithOnStage(event.StageNodeCompleted, func(ctx context.Context, ev event.Event) error {
		nodeCompletions++
		return nil
	}))

	pipe := pipeline.New()
	require.NoError(t, f.Install(pipe))

	info := core.NewExecutionInfoWithID("run-1")
	ctx := context.Background()

	require.NoError(t, pipe.Trigger(ctx, event.NodeStarting{Base: pipe.Base(info, "run-1"), NodeName: "n"}))
	require.NoError(t, pipe.Trigger(ctx, event.NodeCompleted{Base: pipe.Base(info, "run-1"), NodeName: "n"}))

	assert.Equal(t, 1, nodeCompletions)
}

func TestFilterGatesCallbacks(t *testing.T) {
	var seen int
	f := New(
		WithOnEvent(func(ctx context.Context, ev event.Event) error {
			seen++
			return nil
		}),
		WithFilter(func(ev event.Event) bool {
			return ev.RunID() == "wanted"
		}),
	)

	pipe := pipeline.New()
	require.NoError(t, f.Install(pipe))

	ctx := context.Background()
	wanted := core.NewExecutionInfoWithID("wanted")
	other := core.NewExecutionInfoWithID("other")

	require.NoError(t, pipe.Trigger(ctx, event.NodeStarting{Base: pipe.Base(wanted, "wanted"), NodeName: "n"}))
	require.NoError(t, pipe.Trigger(ctx, event.NodeStarting{Base: pipe.Base(other, "other"), NodeName: "n"}))

	assert.Equal(t, 1, seen)
}

func TestCallbackErrorPropagates(t *testing.T) {
	f := New(WithOnEvent(func(ctx context.Context, ev event.Event) error {
		return assert.AnError
	}))

	pipe := pipeline.New()
	require.NoError(t, f.Install(pipe))

	info := core.NewExecutionInfoWithID("run-1")
	err := pipe.Trigger(context.Background(), event.NodeStarting{Base: pipe.Base(info, "run-1"), NodeName: "n"})
	assert.ErrorIs(t, err, assert.AnError)
}
