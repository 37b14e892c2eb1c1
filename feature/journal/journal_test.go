package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/pipeline"
)

func TestInMemoryStoreKeepsAppendOrderPerRun(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i, stage := range []event.Stage{event.StageNodeCompleted, event.StageStrategyCompleted} {
		require.NoError(t, store.Append(ctx, Record{
			RunID:   "run-1",
			Stage:   stage,
			ScopeID: string(rune('a' + i)),
			Time:    time.Now(),
		}))
	}
	require.NoError(t, store.Append(ctx, Record{RunID: "run-2", Stage: event.StageAgentCompleted}))

	records, err := store.Records(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, event.StageNodeCompleted, records[0].Stage)
	assert.Equal(t, event.StageStrategyCompleted, records[1].Stage)

	other, err := store.Records(ctx, "run-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestJournalRecordsTerminalStagesOnly(t *testing.T) {
	store := NewInMemoryStore()
	pipe := pipeline.New()
	require.NoError(t, New(store).Install(pipe))

	info := core.NewExecutionInfoWithID("run-1")
	ctx := context.Background()

	events := []event.Event{
		event.NodeStarting{Base: pipe.Base(info, "run-1"), NodeName: "n"},
		event.NodeCompleted{Base: pipe.Base(info, "run-1"), NodeName: "n", Output: "x"},
		event.StrategyCompleted{Base: pipe.Base(info, "run-1"), StrategyName: "s"},
	}
	for _, ev := range events {
		require.NoError(t, pipe.Trigger(ctx, ev))
	}

	records, err := store.Records(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, event.StageNodeCompleted, records[0].Stage)
	assert.Equal(t, event.StageStrategyCompleted, records[1].Stage)
	assert.NotEmpty(t, records[0].Payload)
}

func TestJournalAllStages(t *testing.T) {
	store := NewInMemoryStore()
	pipe := pipeline.New()
	require.NoError(t, New(store, WithAllStages()).Install(pipe))

	info := core.NewExecutionInfoWithID("run-1")
	require.NoError(t, pipe.Trigger(context.Background(),
		event.NodeStarting{Base: pipe.Base(info, "run-1"), NodeName: "n"}))

	records, err := store.Records(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
