package prompt

// Frame is one element of a streaming model response. The concrete types are
// TextFrame, ToolCallFrame and EndFrame. Consumers switch on the concrete
// type; the marker method keeps the set closed.
type Frame interface {
	isFrame()
}

// TextFrame carries an incremental chunk of assistant text.
type TextFrame struct {
	Text string `json:"text"`
}

// ToolCallFrame carries an incremental fragment of a tool call. Providers
// split a single call across many frames: the first fragment for a call
// carries ID and Name, later fragments append to Args. Interleaved calls are
// distinguished by ID.
type ToolCallFrame struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Args string `json:"args,omitempty"`
}

// EndFrame terminates a stream and reports why the model stopped.
type EndFrame struct {
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

func (TextFrame) isFrame()     {}
func (ToolCallFrame) isFrame() {}
func (EndFrame) isFrame()      {}
