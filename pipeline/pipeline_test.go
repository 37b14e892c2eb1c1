package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerRegistrationOrder(t *testing.T) {
	p := New()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		p.Intercept(event.StageNodeStarting, Registration{
			Feature: FeatureKey(name),
			Handler: func(ctx context.Context, ev event.Event) error {
				order = append(order, name)
				return nil
			},
		})
	}

	ev := event.NodeStarting{Base: p.Base(core.NewExecutionInfo(), "run"), NodeName: "n"}
	require.NoError(t, p.Trigger(context.Background(), ev))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestTriggerAcceptancePredicate(t *testing.T) {
	p := New()

	var seen int
	p.Intercept(event.StageNodeStarting, Registration{
		Feature: "filtered",
		Accepts: func(ev event.Event) bool {
			return ev.(event.NodeStarting).NodeName == "wanted"
		},
		Handler: func(ctx context.Context, ev event.Event) error {
			seen++
			return nil
		},
	})

	base := p.Base(core.NewExecutionInfo(), "run")
	require.NoError(t, p.Trigger(context.Background(), event.NodeStarting{Base: base, NodeName: "other"}))
	require.NoError(t, p.Trigger(context.Background(), event.NodeStarting{Base: base, NodeName: "wanted"}))
	assert.Equal(t, 1, seen)
}

func TestTriggerHandlerErrorAbortsDispatch(t *testing.T) {
	p := New()
	boom := errors.New("handler boom")

	var reached bool
	p.Intercept(event.StageToolCallStarting, Registration{
		Feature: "failing",
		Handler: func(ctx context.Context, ev event.Event) error { return boom },
	})
	p.Intercept(event.StageToolCallStarting, Registration{
		Feature: "later",
		Handler: func(ctx context.Context, ev event.Event) error {
			reached = true
			return nil
		},
	})

	ev := event.ToolCallStarting{Base: p.Base(core.NewExecutionInfo(), "run"), ToolName: "t"}
	err := p.Trigger(context.Background(), ev)
	require.ErrorIs(t, err, boom)
	assert.False(t, reached, "registrations after the failing one must not run")
}

func TestBaseStampsClock(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(WithClock(core.FixedClock{T: at}))

	base := p.Base(core.NewExecutionInfo(), "run")
	assert.Equal(t, at, base.Time)
	assert.Equal(t, "run", base.Run)
}

func TestInterceptAllCoversEveryStage(t *testing.T) {
	p := New()
	p.InterceptAll(Registration{
		Feature: "everywhere",
		Handler: func(ctx context.Context, ev event.Event) error { return nil },
	})

	assert.Equal(t, 1, p.Registrations(event.StageAgentStarting))
	assert.Equal(t, 1, p.Registrations(event.StageToolCallCompleted))
	assert.Equal(t, 1, p.Registrations(event.StageModelStreamingFrame))
}
