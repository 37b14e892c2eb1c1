// Package prompt defines the model-execution contract consumed by the graph
// executor: send a prompt with tool descriptors, get response(s) back, or a
// stream of frames. Provider wire clients live in subpackages (openai,
// anthropic) behind the Executor interface; authentication and retry are
// entirely their concern.
package prompt
