package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vex/chat"
	"vex/tool"
)

// runToolRound implements spec.md §4.4.4: for each tool call in the round,
// guard on a missing location argument or a read-only-turn violation
// without dispatching, otherwise request approval if required, dispatch,
// and append one ToolResult to history per call — in call order, as a
// single user message carrying all of this round's ToolResult blocks.
func (e *Engine) runToolRound(ctx context.Context, turn *turnState, calls []chat.ContentBlock, indices []int) error {
	results := make([]chat.ContentBlock, 0, len(calls))

	for i, call := range calls {
		canonical := tool.CanonicalName(call.Name)
		index := indices[i] // the block index this call's ContentBlockStart was emitted under during the drain.

		if missing := tool.MissingLocationArgs(canonical, call.Input); len(missing) > 0 {
			msg := fmt.Sprintf("missing required argument(s): %v", missing)
			results = append(results, e.denyToolCall(index, call, msg))
			continue
		}

		if turn.readOnly && tool.IsMutating(canonical) {
			msg := "this request appears read-only; declining to run a mutating tool without explicit instruction"
			results = append(results, e.denyToolCall(index, call, msg))
			continue
		}

		if e.requiresApproval(canonical) {
			approved := e.awaitApproval(ctx, index, call)
			if !approved {
				results = append(results, e.denyToolCall(index, call, tool.ApprovalDenied(canonical).Error()))
				continue
			}
		}

		results = append(results, e.executeToolCall(ctx, index, call, canonical))
	}

	e.history = append(e.history, chat.NewBlockMessage(chat.RoleUser, results))
	return nil
}

// denyToolCall synthesizes an is_error ToolResult without dispatching, for
// the missing-location and read-only-turn guards (spec.md §4.4.4 steps
// 1-2) and for a denied approval, emitting the matching ToolCall-cancelled and ToolResult UI events.
func (e *Engine) denyToolCall(index int, call chat.ContentBlock, message string) chat.ContentBlock {
	e.emit(chat.StreamBlockDelta(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolCall, ToolCallID: call.ID, ToolName: call.Name,
		ToolInput: call.Input, Status: chat.ToolCancelled,
	}))
	e.emit(chat.StreamBlockComplete(index))
	e.emit(chat.StreamBlockStart(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolResult, ToolResultForID: call.ID, Output: message, IsError: true,
	}))
	e.emit(chat.StreamBlockComplete(index))
	return chat.NewToolResultBlock(call.ID, message, true)
}

// awaitApproval emits a ToolApprovalRequest and blocks until the frontend
// sends a decision on its channel or ctx is cancelled (spec.md §4.4.4 step
// 3). The engine holds the receiving side of the single-shot channel; a
// cancelled ctx or a closed channel counts as a denial.
func (e *Engine) awaitApproval(ctx context.Context, index int, call chat.ContentBlock) bool {
	approvalID := newApprovalID()
	log.Debug().Str("approval_id", approvalID).Str("tool", call.Name).Msg("engine: awaiting tool approval")

	e.emit(chat.StreamBlockDelta(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolCall, ToolCallID: call.ID, ToolName: call.Name,
		ToolInput: call.Input, Status: chat.ToolWaitingApproval,
	}))

	preview := previewInput(call.Input)
	respCh := chat.NewApprovalResponse()
	e.emit(chat.ToolApprovalRequest(call.Name, preview, respCh))

	select {
	case decision, ok := <-respCh:
		log.Debug().Str("approval_id", approvalID).Bool("approved", ok && decision).Msg("engine: tool approval decided")
		return ok && decision
	case <-ctx.Done():
		return false
	}
}

func previewInput(v chat.Value) string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	s := string(raw)
	const maxPreview = 500
	if len(s) > maxPreview {
		return s[:maxPreview] + "..."
	}
	return s
}

// executeToolCall dispatches call, applying the read_file snapshot summary
// (spec.md §4.4.6) and the tool-result character budget before returning
// the ToolResult block to append to history.
func (e *Engine) executeToolCall(ctx context.Context, index int, call chat.ContentBlock, canonical string) chat.ContentBlock {
	e.emit(chat.StreamBlockDelta(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolCall, ToolCallID: call.ID, ToolName: call.Name,
		ToolInput: call.Input, Status: chat.ToolExecuting,
	}))

	toolCtx, cancel := context.WithTimeout(ctx, time.Duration(e.Opts.ToolTimeoutSecs)*time.Second)
	defer cancel()

	output, err := e.Dispatcher.Dispatch(toolCtx, canonical, call.Input)
	isError := err != nil
	if isError {
		output = err.Error()
	} else if canonical == tool.ReadFile {
		output = e.summarizeReadFile(call.Input, output)
	}

	output = truncateHistoryText(output, e.Opts.MaxToolResultHistoryChars)

	toolCallStatus := chat.ToolComplete
	if isError {
		toolCallStatus = chat.ToolError
	}
	e.emit(chat.StreamBlockDelta(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolCall, ToolCallID: call.ID, ToolName: call.Name,
		ToolInput: call.Input, Status: toolCallStatus,
	}))
	e.emit(chat.StreamBlockComplete(index))
	e.emit(chat.StreamBlockStart(index, chat.StreamBlock{
		Kind: chat.StreamBlockToolResult, ToolResultForID: call.ID, Output: output, IsError: isError,
	}))
	e.emit(chat.StreamBlockComplete(index))

	return chat.NewToolResultBlock(call.ID, output, isError)
}

// summarizeReadFile applies spec.md §4.4.6's snapshot-cache rule: the first
// read of a path gets a summary plus the full content, an unchanged read
// collapses to the summary alone, and a changed read gets a summary of both
// sizes plus the full new content.
func (e *Engine) summarizeReadFile(args chat.Value, content string) string {
	path, _ := tool.Lookup(args, "path")
	if e.Dispatcher.Snapshots == nil {
		return content
	}
	state, prev := e.Dispatcher.Snapshots.Observe(path, content)
	switch state {
	case chat.ReadUnchanged:
		return fmt.Sprintf("No changes since last read of %s (%d chars, %d lines).", path, prev.CharCount, prev.LineCount)
	case chat.ReadChanged:
		now := chat.FileSnapshot{Hash: chat.HashContent(content), CharCount: len(content), LineCount: countRuneLines(content)}
		return fmt.Sprintf("%s changed since last read (%d chars, %d lines -> %d chars, %d lines):\n%s",
			path, prev.CharCount, prev.LineCount, now.CharCount, now.LineCount, content)
	default: // ReadFirst
		return fmt.Sprintf("First read of %s (%d chars, %d lines):\n%s", path, len(content), countRuneLines(content), content)
	}
}

func countRuneLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
