package chat

import "github.com/invopop/jsonschema"

// Tool is a named tool definition sent to both wire protocols: an
// Anthropic-style tools array entry and, translated, an OpenAI function
// definition. Parameters is generated via invopop/jsonschema from a Go
// struct describing the tool's arguments (grounded on sidekick's
// common.Tool / dev/read_file.go usage of the same library).
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// ToolCall is one invocation the model asked for. Arguments is the raw JSON
// text accumulated from partial_json deltas (or the full JSON for
// non-streaming callers); callers parse it with chat.ParseValue.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}
