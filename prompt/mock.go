package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/graphmesh/tool"
)

// MockExecutor is a scripted Executor for tests and examples. Each Execute
// call consumes the next enqueued response batch; each ExecuteStreaming call
// consumes the next enqueued frame script. Calls beyond the script fail.
type MockExecutor struct {
	mu       sync.Mutex
	batches  [][]Response
	scripts  [][]Frame
	executed int
	streamed int
}

// NewMockExecutor returns an empty MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Enqueue appends one response batch to the script.
func (m *MockExecutor) Enqueue(responses ...Response) *MockExecutor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, responses)
	return m
}

// EnqueueFrames appends one streaming frame script. A terminating EndFrame
// is appended if the script lacks one.
func (m *MockExecutor) EnqueueFrames(frames ...Frame) *MockExecutor {
	if len(frames) == 0 {
		frames = []Frame{EndFrame{FinishReason: "stop"}}
	} else if _, ok := frames[len(frames)-1].(EndFrame); !ok {
		frames = append(frames, EndFrame{FinishReason: "stop"})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, frames)
	return m
}

// Calls reports how many Execute calls have been served.
func (m *MockExecutor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executed
}

// Execute returns the next scripted response batch.
func (m *MockExecutor) Execute(ctx context.Context, p Prompt, mod Model, tools []tool.Descriptor) ([]Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.executed >= len(m.batches) {
		return nil, fmt.Errorf("mock executor: no scripted response for call %d", m.executed+1)
	}
	batch := m.batches[m.executed]
	m.executed++
	return batch, nil
}

// ExecuteStreaming replays the next scripted frame sequence.
func (m *MockExecutor) ExecuteStreaming(ctx context.Context, p Prompt, mod Model, tools []tool.Descriptor) (<-chan Frame, <-chan error) {
	frameCh := make(chan Frame)
	errCh := make(chan error, 1)

	m.mu.Lock()
	var script []Frame
	if m.streamed < len(m.scripts) {
		script = m.scripts[m.streamed]
		m.streamed++
	}
	m.mu.Unlock()

	go func() {
		defer close(frameCh)
		defer close(errCh)

		if script == nil {
			errCh <- &StreamingError{Model: mod.Name, Err: fmt.Errorf("mock executor: no scripted frames")}
			return
		}
		for _, f := range script {
			select {
			case frameCh <- f:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return frameCh, errCh
}
