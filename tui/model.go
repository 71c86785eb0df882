// Package tui renders the C5 UiUpdate stream with
// github.com/charmbracelet/bubbletea, bubbles, and lipgloss — all direct
// teacher dependencies. Grounded on tui/task_progress_view.go's
// spinner+lipgloss status-indicator pattern and tui/approval_input.go's
// textarea-based input component and approval-mode handling.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vex/chat"
	"vex/engine"
	"vex/ui"
)

var (
	greenIndicator  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("⏺")
	redIndicator    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("⏺")
	yellowIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("⏺")
	grayIndicator   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("⏺")
	resultPrefix    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("⎿")
	toolNameStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// blockView is the transcript's rendering of one chat.StreamBlock, keyed by
// its UI index so StreamBlockDelta/StreamBlockComplete can update it in
// place.
type blockView struct {
	index int
	block chat.StreamBlock
	done  bool
}

type pendingApproval struct {
	toolName string
	preview  string
	resp     chat.ApprovalResponse
}

type model struct {
	eng     *engine.Engine
	updates <-chan chat.UiUpdate

	spinner  spinner.Model
	input    textarea.Model
	width    int
	busy     bool
	quitting bool
	err      error

	finalText string
	blocks    []*blockView
	byIndex   map[int]*blockView

	approval *pendingApproval
}

// Run drives eng interactively: it opens a bubbletea program that reads
// user prompts, forwards them to eng.SendMessage, and renders eng's UI
// update stream (delivered over uiChan) until the user quits.
func Run(ctx context.Context, eng *engine.Engine, uiChan *ui.Channel) error {
	m := newModel(eng, uiChan.Updates())
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(eng *engine.Engine, updates <-chan chat.UiUpdate) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	ta := textarea.New()
	ta.Placeholder = "ask vex to do something..."
	ta.CharLimit = 8000
	ta.SetHeight(2)
	ta.Focus()

	return model{
		eng:     eng,
		updates: updates,
		spinner: s,
		input:   ta,
		byIndex: make(map[int]*blockView),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink, listenForUpdate(m.updates))
}

// uiUpdateMsg wraps one chat.UiUpdate delivered off the engine's channel.
type uiUpdateMsg struct {
	update chat.UiUpdate
	ok     bool
}

func listenForUpdate(updates <-chan chat.UiUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		return uiUpdateMsg{update: u, ok: ok}
	}
}

// turnResultMsg is sent when eng.SendMessage returns.
type turnResultMsg struct {
	err error
}

func (m model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.eng.SendMessage(context.Background(), text)
		return turnResultMsg{err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(min(msg.Width-4, 100))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case uiUpdateMsg:
		return m.handleUiUpdate(msg)

	case turnResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.approval != nil {
		switch msg.String() {
		case "y", "Y":
			m.approval.resp <- true
			m.approval = nil
			return m, nil
		case "n", "N", "esc":
			m.approval.resp <- false
			m.approval = nil
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		if m.busy {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.err = nil
		return m, m.sendMessage(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	for _, bv := range m.blocks {
		b.WriteString(renderBlock(bv))
		b.WriteString("\n")
	}
	if m.finalText != "" {
		b.WriteString(m.finalText)
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	if m.approval != nil {
		b.WriteString(fmt.Sprintf("%s approve %s %s ? [y/N]\n", yellowIndicator, toolNameStyle.Render(m.approval.toolName), m.approval.preview))
		return b.String()
	}

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(" working...\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}
