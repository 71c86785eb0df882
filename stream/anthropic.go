package stream

import (
	"encoding/json"

	"vex/chat"
)

// anthropicEnvelope is the minimal shape shared by all Anthropic messages
// streaming events, discriminated on Type.
type anthropicEnvelope struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`

	ContentBlock *anthropicContentBlock `json:"content_block"`
	Delta        *anthropicDelta        `json:"delta"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type anthropicDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	PartialJSON string `json:"partial_json"`
	StopReason  string `json:"stop_reason"`
}

// decodeAnthropicFrame attempts to decode data as an Anthropic-style
// StreamEvent. ok is false if data doesn't match the Anthropic schema (the
// caller then falls back to the OpenAI decoder per spec.md §4.1).
func decodeAnthropicFrame(eventType, data string) (events []chat.StreamEvent, ok bool) {
	var env anthropicEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil || env.Type == "" {
		return nil, false
	}

	switch env.Type {
	case "message_start":
		return []chat.StreamEvent{{Kind: chat.EventMessageStart}}, true

	case "ping":
		return nil, true

	case "content_block_start":
		if env.Index == nil || env.ContentBlock == nil {
			return nil, true
		}
		block := anthropicToBlock(*env.ContentBlock)
		return []chat.StreamEvent{{Kind: chat.EventContentBlockStart, Index: *env.Index, Block: block}}, true

	case "content_block_delta":
		if env.Index == nil || env.Delta == nil {
			return nil, true
		}
		ev := chat.StreamEvent{Kind: chat.EventContentBlockDelta, Index: *env.Index}
		switch env.Delta.Type {
		case "text_delta":
			ev.HasTextDelta = true
			ev.TextDelta = env.Delta.Text
		case "input_json_delta":
			ev.HasPartialJSON = true
			ev.PartialJSONDelta = env.Delta.PartialJSON
		}
		return []chat.StreamEvent{ev}, true

	case "content_block_stop":
		if env.Index == nil {
			return nil, true
		}
		return []chat.StreamEvent{{Kind: chat.EventContentBlockStop, Index: *env.Index}}, true

	case "message_delta":
		ev := chat.StreamEvent{Kind: chat.EventMessageDelta}
		if env.Delta != nil && env.Delta.StopReason != "" {
			ev.HasStopReason = true
			ev.StopReason = env.Delta.StopReason
		}
		return []chat.StreamEvent{ev}, true

	case "message_stop":
		return []chat.StreamEvent{{Kind: chat.EventMessageStop}}, true

	default:
		return nil, false
	}
}

func anthropicToBlock(cb anthropicContentBlock) chat.ContentBlock {
	switch cb.Type {
	case "tool_use":
		input := chat.EmptyObject()
		if len(cb.Input) > 0 {
			if v, err := chat.ParseValue(cb.Input); err == nil {
				input = v
			}
		}
		return chat.NewToolUseBlock(cb.ID, cb.Name, input)
	default:
		return chat.NewTextBlock(cb.Text)
	}
}
