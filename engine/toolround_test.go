package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vex/chat"
	"vex/tool"
	"vex/ui"
)

func newTestEngine(t *testing.T, toolConfirm bool) (*Engine, *ui.Channel) {
	ws, err := tool.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	dispatcher := tool.NewDispatcher(ws)
	uiChan := ui.NewChannel(64)
	e := &Engine{
		Dispatcher: dispatcher,
		UI:         uiChan,
		Opts:       Options{ToolConfirm: toolConfirm, ToolTimeoutSecs: 5, MaxToolResultHistoryChars: 8000},
	}
	return e, uiChan
}

// drainUIAndRespond reads updates off uiChan until it sees a
// ToolApprovalRequest, answers it with decision, then keeps draining in the
// background so further emits never block the engine under test.
func drainUIAndRespond(uiChan *ui.Channel, decision bool) {
	go func() {
		for u := range uiChan.Updates() {
			if u.Kind == chat.UpdateToolApprovalRequest {
				u.ResponseChannel <- decision
			}
		}
	}()
}

func TestRunToolRoundReadOnlyNoApprovalNeeded(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, true)

	full := filepath.Join(e.Dispatcher.Workspace.BaseDir, "a.go")
	require.NoError(t, os.WriteFile(full, []byte("package a\n"), 0o644))

	calls := []chat.ContentBlock{chat.NewToolUseBlock("t1", tool.ReadFile, objArgsChat("path", "a.go"))}
	turn := &turnState{}
	err := e.runToolRound(context.Background(), turn, calls, []int{0})
	require.NoError(t, err)

	require.Len(t, e.history, 1)
	results := e.history[0].Blocks
	require.Len(t, results, 1)
	assert.False(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "package a")
}

func TestRunToolRoundMissingLocationArgDeniesWithoutDispatch(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, true)

	calls := []chat.ContentBlock{chat.NewToolUseBlock("t1", tool.WriteFile, chat.EmptyObject())}
	turn := &turnState{}
	err := e.runToolRound(context.Background(), turn, calls, []int{0})
	require.NoError(t, err)

	results := e.history[0].Blocks
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "missing required argument")
}

func TestRunToolRoundReadOnlyTurnDeniesMutatingTool(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, true)

	calls := []chat.ContentBlock{chat.NewToolUseBlock("t1", tool.WriteFile, objArgsChat2(map[string]string{"path": "a.go", "content": "x"}))}
	turn := &turnState{readOnly: true}
	err := e.runToolRound(context.Background(), turn, calls, []int{0})
	require.NoError(t, err)

	results := e.history[0].Blocks
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "read-only")
}

func TestRunToolRoundMutatingApprovedExecutes(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, true)

	calls := []chat.ContentBlock{chat.NewToolUseBlock("t1", tool.WriteFile, objArgsChat2(map[string]string{"path": "a.go", "content": "hi"}))}
	turn := &turnState{}
	err := e.runToolRound(context.Background(), turn, calls, []int{0})
	require.NoError(t, err)

	results := e.history[0].Blocks
	require.Len(t, results, 1)
	assert.False(t, results[0].IsError)

	raw, err := os.ReadFile(filepath.Join(e.Dispatcher.Workspace.BaseDir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(raw))
}

func TestRunToolRoundMutatingDeniedDoesNotExecute(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, false)

	calls := []chat.ContentBlock{chat.NewToolUseBlock("t1", tool.WriteFile, objArgsChat2(map[string]string{"path": "a.go", "content": "hi"}))}
	turn := &turnState{}
	err := e.runToolRound(context.Background(), turn, calls, []int{0})
	require.NoError(t, err)

	results := e.history[0].Blocks
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "approval denied")

	_, statErr := os.Stat(filepath.Join(e.Dispatcher.Workspace.BaseDir, "a.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAwaitApprovalReturnsFalseOnContextCancellation(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	// No responder: the approval request is drained but never answered.
	go func() {
		<-uiChan.Updates()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	approved := e.awaitApproval(ctx, 0, chat.NewToolUseBlock("t1", tool.WriteFile, chat.EmptyObject()))
	assert.False(t, approved)
}

func TestExecuteToolCallReadFileFirstReadSummary(t *testing.T) {
	e, uiChan := newTestEngine(t, false)
	drainUIAndRespond(uiChan, true)

	full := filepath.Join(e.Dispatcher.Workspace.BaseDir, "a.go")
	require.NoError(t, os.WriteFile(full, []byte("package a\n"), 0o644))

	call := chat.NewToolUseBlock("t1", tool.ReadFile, objArgsChat("path", "a.go"))
	result := e.executeToolCall(context.Background(), 0, call, tool.ReadFile)
	assert.Contains(t, result.Content, "First read of a.go")

	result2 := e.executeToolCall(context.Background(), 0, call, tool.ReadFile)
	assert.Contains(t, result2.Content, "No changes since last read")
}

func TestExecuteToolCallErrorSetsIsError(t *testing.T) {
	e, _ := newTestEngine(t, false)
	call := chat.NewToolUseBlock("t1", tool.ReadFile, objArgsChat("path", "does-not-exist.go"))
	result := e.executeToolCall(context.Background(), 0, call, tool.ReadFile)
	assert.True(t, result.IsError)
}

func TestPreviewInputTruncatesLongInput(t *testing.T) {
	v := objArgsChat("content", string(make([]byte, 1000)))
	preview := previewInput(v)
	assert.LessOrEqual(t, len(preview), 503)
}

func objArgsChat(key, val string) chat.Value {
	return chat.Value{Kind: chat.KindObject, Object: map[string]chat.Value{key: {Kind: chat.KindString, Str: val}}}
}

func objArgsChat2(pairs map[string]string) chat.Value {
	obj := map[string]chat.Value{}
	for k, v := range pairs {
		obj[k] = chat.Value{Kind: chat.KindString, Str: v}
	}
	return chat.Value{Kind: chat.KindObject, Object: obj}
}
