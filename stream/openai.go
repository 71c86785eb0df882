package stream

import (
	"encoding/json"
	"fmt"

	"vex/chat"
)

// openaiChunk is an OpenAI chat.completion.chunk payload.
type openaiChunk struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Delta        struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

// openaiState tracks the synthetic block indices assigned to streamed tool
// calls so ContentBlockStop can be emitted for every block that was
// started, on finish_reason or the terminal [DONE] sentinel (spec.md
// §4.1).
type openaiState struct {
	started map[int]bool // synthetic index -> started
	stopped map[int]bool // synthetic index -> already stopped
}

func newOpenaiState() openaiState {
	return openaiState{started: make(map[int]bool), stopped: make(map[int]bool)}
}

// decodeChunk decodes one OpenAI chat-completion chunk into zero or more
// unified StreamEvents. A JSON decode failure is returned as an error so
// the frame-level FrameParse handling (log + drop) applies; a chunk that
// decodes but has no "choices" is returned as an error too, so a
// non-OpenAI, non-Anthropic payload reaching here surfaces as a dropped
// frame upstream.
func (s *openaiState) decodeChunk(data string) ([]chat.StreamEvent, error) {
	var chunk openaiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, err
	}
	if len(chunk.Choices) == 0 {
		return nil, fmt.Errorf("openai chunk: no choices")
	}

	var events []chat.StreamEvent
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			events = append(events, chat.StreamEvent{
				Kind: chat.EventContentBlockDelta, Index: 0,
				HasTextDelta: true, TextDelta: choice.Delta.Content,
			})
		}

		for _, tc := range choice.Delta.ToolCalls {
			synthetic := tc.Index + 1

			if !s.started[synthetic] && tc.Function.Name != "" {
				id := tc.ID
				if id == "" {
					id = fmt.Sprintf("toolu_openai_%d", tc.Index)
				}
				events = append(events, chat.StreamEvent{
					Kind: chat.EventContentBlockStart, Index: synthetic,
					Block: chat.NewToolUseBlock(id, tc.Function.Name, chat.EmptyObject()),
				})
				s.started[synthetic] = true
			}

			if tc.Function.Arguments != "" {
				events = append(events, chat.StreamEvent{
					Kind: chat.EventContentBlockDelta, Index: synthetic,
					HasPartialJSON: true, PartialJSONDelta: tc.Function.Arguments,
				})
			}
		}

		if choice.FinishReason != "" {
			events = append(events, s.closeAllOpenToolBlocks()...)
			events = append(events, chat.StreamEvent{
				Kind: chat.EventMessageDelta, HasStopReason: true, StopReason: choice.FinishReason,
			})
		}
	}
	return events, nil
}

// closeAllOpenToolBlocks emits a ContentBlockStop for every tool block that
// was started but not yet stopped, in ascending index order, then marks
// them stopped so a later call (e.g. on both finish_reason and [DONE]) is
// idempotent.
func (s *openaiState) closeAllOpenToolBlocks() []chat.StreamEvent {
	var events []chat.StreamEvent
	indices := make([]int, 0, len(s.started))
	for idx, started := range s.started {
		if started && !s.stopped[idx] {
			indices = append(indices, idx)
		}
	}
	sortInts(indices)
	for _, idx := range indices {
		events = append(events, chat.StreamEvent{Kind: chat.EventContentBlockStop, Index: idx})
		s.stopped[idx] = true
	}
	return events
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
