package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vex/chat"
)

var titleCaser = cases.Title(language.English)

// handleUiUpdate folds one chat.UiUpdate into the transcript, the same way
// task_progress_view.go's flowActionChangeMsg case updates an existing
// tracked action in place or appends a new one, keyed here by UI index
// instead of an action ID.
func (m model) handleUiUpdate(msg uiUpdateMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil
	}
	u := msg.update

	switch u.Kind {
	case chat.UpdateStreamBlockStart:
		if u.Block.Kind == chat.StreamBlockFinalText {
			m.finalText = u.Block.Content
			break
		}
		bv := &blockView{index: u.Index, block: u.Block}
		m.byIndex[u.Index] = bv
		m.blocks = append(m.blocks, bv)

	case chat.UpdateStreamBlockDelta:
		if bv, ok := m.byIndex[u.Index]; ok {
			bv.block = u.Block
		}

	case chat.UpdateStreamBlockComplete:
		if bv, ok := m.byIndex[u.Index]; ok {
			bv.done = true
		}

	case chat.UpdateToolApprovalRequest:
		m.approval = &pendingApproval{toolName: u.ToolName, preview: u.InputPreview, resp: u.ResponseChannel}

	case chat.UpdateTurnComplete:
		m.busy = false

	case chat.UpdateError:
		m.err = fmt.Errorf("%s", u.Message)
		m.busy = false
	}

	return m, listenForUpdate(m.updates)
}

// renderBlock renders one transcript entry, grounded on
// task_progress_view.go's colored-indicator-plus-label convention
// (greenIndicator/redIndicator/yellowIndicator ahead of a status word).
func renderBlock(bv *blockView) string {
	b := bv.block
	switch b.Kind {
	case chat.StreamBlockToolCall:
		return fmt.Sprintf("%s %s %s %s", toolStatusIndicator(b.Status), toolNameStyle.Render(b.ToolName), statusLabel(b.Status), compactJSON(b))
	case chat.StreamBlockToolResult:
		line := b.Output
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx] + " ..."
		}
		if b.IsError {
			return fmt.Sprintf("  %s %s", resultPrefix, errorStyle.Render(line))
		}
		return fmt.Sprintf("  %s %s", resultPrefix, line)
	case chat.StreamBlockFinalText:
		return b.Content
	default:
		return b.Content
	}
}

func toolStatusIndicator(status chat.ToolStatus) string {
	switch status {
	case chat.ToolComplete:
		return greenIndicator
	case chat.ToolError, chat.ToolCancelled:
		return redIndicator
	case chat.ToolExecuting, chat.ToolWaitingApproval:
		return yellowIndicator
	default:
		return grayIndicator
	}
}

// statusLabel renders a ToolStatus as a title-cased word for the transcript,
// e.g. "waiting_approval" -> "Waiting Approval".
func statusLabel(status chat.ToolStatus) string {
	return titleCaser.String(strings.ReplaceAll(status.String(), "_", " "))
}

func compactJSON(b chat.StreamBlock) string {
	raw, err := b.ToolInput.MarshalJSON()
	if err != nil {
		return ""
	}
	s := string(raw)
	const max = 120
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
