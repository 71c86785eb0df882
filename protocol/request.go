package protocol

import (
	"encoding/json"
	"fmt"

	"vex/chat"
)

// anthropicMessage and anthropicOutBlock mirror the wire shapes consumed by the
// Anthropic messages endpoint, built directly (no anthropic-sdk-go
// dependency) since this module speaks the wire protocol itself rather than
// going through a provider SDK.
type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicOutBlock `json:"content"`
}

type anthropicOutBlock struct {
	Type      string      `json:"type"`
	Text      string      `json:"text,omitempty"`
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Input     interface{} `json:"input,omitempty"`
	ToolUseID string      `json:"tool_use_id,omitempty"`
	Content   string      `json:"content,omitempty"`
	IsError   bool        `json:"is_error,omitempty"`
}

type anthropicTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"input_schema"`
}

// BuildAnthropicRequest builds the JSON body for an Anthropic messages
// streaming request: system prompt, merged same-role messages, and the tool
// catalog translated to the input_schema shape (grounded on
// llm/anthropic_tool_chat.go's anthropicFromChatMessages /
// anthropicFromTools, minus the vendor SDK types).
func BuildAnthropicRequest(model, system string, messages []chat.ApiMessage, tools []chat.Tool, opts Options) ([]byte, error) {
	var built []anthropicMessage
	for _, msg := range messages {
		role := anthropicRole(msg.Role)
		blocks, err := anthropicBlocksFor(msg)
		if err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}
		if n := len(built); n > 0 && built[n-1].Role == role {
			built[n-1].Content = append(built[n-1].Content, blocks...)
			continue
		}
		built = append(built, anthropicMessage{Role: role, Content: blocks})
	}

	body := map[string]interface{}{
		"model":      model,
		"max_tokens": ClampMaxTokens(opts.MaxTokens),
		"messages":   built,
		"stream":     true,
	}
	if system != "" {
		body["system"] = system
	}
	if opts.StructuredToolProtocol && len(tools) > 0 {
		body["tools"] = anthropicTools(tools)
		body["tool_choice"] = map[string]string{"type": "auto"}
	}
	return json.Marshal(body)
}

func anthropicRole(role chat.Role) string {
	switch role {
	case chat.RoleAssistant:
		return "assistant"
	default:
		// anthropic has no system or tool role; system is carried in the
		// top-level "system" field and tool results ride as user messages.
		return "user"
	}
}

func anthropicBlocksFor(msg chat.ApiMessage) ([]anthropicOutBlock, error) {
	if len(msg.Blocks) == 0 {
		if msg.Text == "" {
			return nil, nil
		}
		return []anthropicOutBlock{{Type: "text", Text: msg.Text}}, nil
	}

	var blocks []anthropicOutBlock
	for _, b := range msg.Blocks {
		switch b.Kind {
		case chat.BlockText:
			blocks = append(blocks, anthropicOutBlock{Type: "text", Text: b.Text})
		case chat.BlockToolUse:
			input, err := b.Input.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("protocol: marshal tool_use input: %w", err)
			}
			var raw interface{}
			if err := json.Unmarshal(input, &raw); err != nil {
				return nil, fmt.Errorf("protocol: unmarshal tool_use input: %w", err)
			}
			blocks = append(blocks, anthropicOutBlock{Type: "tool_use", ID: b.ID, Name: b.Name, Input: raw})
		case chat.BlockToolResult:
			blocks = append(blocks, anthropicOutBlock{Type: "tool_result", ToolUseID: b.ToolUseID, Content: b.Content, IsError: b.IsError})
		}
	}
	return blocks, nil
}

func anthropicTools(tools []chat.Tool) []anthropicTool {
	out := make([]anthropicTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	return out
}

// openaiMessage mirrors one chat-completion message: either a plain
// user/assistant/system turn, an assistant turn carrying tool_calls, or a
// tool-role reply to a specific tool_call_id.
type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
}

type openaiToolCall struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Function openaiToolCallFnObj `json:"function"`
}

type openaiToolCallFnObj struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  interface{} `json:"parameters"`
}

type openaiToolDef struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

// BuildOpenAIRequest builds the JSON body for an OpenAI chat-completions
// streaming request: messages flattened to role:user/assistant/system/tool
// (grounded on llm/openai_tool_chat.go's openaiFromChatMessages /
// openaiFromTools) and tools translated to the function-calling shape.
func BuildOpenAIRequest(model, system string, messages []chat.ApiMessage, tools []chat.Tool, opts Options) ([]byte, error) {
	var built []openaiMessage
	if system != "" {
		built = append(built, openaiMessage{Role: "system", Content: system})
	}
	for _, msg := range messages {
		built = append(built, openaiMessagesFor(msg)...)
	}

	body := map[string]interface{}{
		"model":      model,
		"max_tokens": ClampMaxTokens(opts.MaxTokens),
		"messages":   built,
		"stream":     true,
	}
	if opts.StructuredToolProtocol && len(tools) > 0 {
		body["tools"] = openaiTools(tools)
		body["tool_choice"] = "auto"
	}
	return json.Marshal(body)
}

func openaiMessagesFor(msg chat.ApiMessage) []openaiMessage {
	if len(msg.Blocks) == 0 {
		return []openaiMessage{{Role: openaiRole(msg.Role), Content: msg.Text}}
	}

	var out []openaiMessage
	var text string
	var calls []openaiToolCall
	for _, b := range msg.Blocks {
		switch b.Kind {
		case chat.BlockText:
			text += b.Text
		case chat.BlockToolUse:
			raw, _ := b.Input.MarshalJSON()
			calls = append(calls, openaiToolCall{
				ID:   b.ID,
				Type: "function",
				Function: openaiToolCallFnObj{
					Name:      b.Name,
					Arguments: string(raw),
				},
			})
		case chat.BlockToolResult:
			out = append(out, openaiMessage{Role: "tool", ToolCallID: b.ToolUseID, Content: b.Content})
		}
	}
	if text != "" || len(calls) > 0 {
		out = append([]openaiMessage{{Role: openaiRole(msg.Role), Content: text, ToolCalls: calls}}, out...)
	}
	return out
}

func openaiRole(role chat.Role) string {
	switch role {
	case chat.RoleAssistant:
		return "assistant"
	case chat.RoleSystem:
		return "system"
	default:
		return "user"
	}
}

func openaiTools(tools []chat.Tool) []openaiToolDef {
	out := make([]openaiToolDef, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaiToolDef{
			Type: "function",
			Function: openaiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
