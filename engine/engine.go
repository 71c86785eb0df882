// Package engine implements the Turn Engine (C4): the conversation loop
// that drives the Protocol Adapter and Stream Frame Parser per round,
// aggregates content blocks, requests tool approvals, invokes the Tool
// Dispatcher, manages per-turn and cross-turn history, and enforces the
// loop guards (spec.md §4.4). This is the core of the repository.
//
// Grounded on sidedotdev-sidekick/dev/llm_loop.go for the generic
// round/iteration loop shape (iteration counters, guard checks before
// continuing), adapted from Temporal workflow.Context/workflow.Go
// primitives to plain context.Context and goroutines — there is no
// durable-execution runtime backing a single-process CLI turn engine. The
// overall SendMessage -> run round-loop structure, and the practice of
// appending tool results back into history each round before looping, is
// grounded on
// d1a82041_danielbrauer-ClaudeCodeGo__internal-conversation-loop.go.go's
// Loop.SendMessage/Loop.run. The repeated-tool-call guard is grounded on
// 15e7f07c_sacenox-symb__internal-llm-loop.go.go's recentCall tracking and
// injected-reminder pattern.
package engine

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vex/chat"
	"vex/protocol"
	"vex/tool"
	"vex/ui"
)

// Engine drives one conversation against one endpoint. It owns the
// conversation history exclusively; per-turn buffers live only for the
// duration of one SendMessage call (spec.md §3 "Lifecycle & ownership").
type Engine struct {
	Endpoint string
	Wire     protocol.WireProtocol
	Model    string
	System   string
	Tools    []chat.Tool

	Dispatcher *tool.Dispatcher
	Client     *http.Client
	Opts       Options
	UI         *ui.Channel

	history    []chat.ApiMessage
	payloadLog *payloadLogger
}

// New returns an Engine ready to drive turns against endpoint. wire and
// opts.IsLocal should agree with protocol.InferProtocol/IsLocalEndpoint for
// endpoint; callers (typically cli/cmd/vex) resolve these once at startup.
func New(endpoint string, wire protocol.WireProtocol, model, system string, tools []chat.Tool, dispatcher *tool.Dispatcher, client *http.Client, opts Options, uiChan *ui.Channel) *Engine {
	e := &Engine{
		Endpoint:   endpoint,
		Wire:       wire,
		Model:      model,
		System:     system,
		Tools:      tools,
		Dispatcher: dispatcher,
		Client:     client,
		Opts:       opts,
		UI:         uiChan,
	}
	if opts.DebugPayload {
		e.payloadLog = newPayloadLogger(opts.APILogPath)
	}
	return e
}

// History returns the current conversation history. Callers must not
// mutate the returned slice; it aliases the Engine's own storage.
func (e *Engine) History() []chat.ApiMessage {
	return e.history
}

// emit sends u on the UI channel if one is configured; a nil channel makes
// the engine usable headlessly (e.g. in tests) without a consumer.
func (e *Engine) emit(u chat.UiUpdate) {
	if e.UI != nil {
		e.UI.Send(u)
	}
}

// newApprovalID is used only for log correlation; the approval channel
// itself, not this ID, is the thing that actually identifies the request to
// the frontend (spec.md §3 "the response channel... is single-shot").
func newApprovalID() string {
	return uuid.NewString()
}

// SendMessage is the C4 entry point (spec.md §4.4.1): append the user's
// text to history, run the round loop against the configured endpoint, and
// return the assistant's final answer text (or a loop-guard termination,
// which is a successful return per spec.md §7).
func (e *Engine) SendMessage(ctx context.Context, userText string) (string, error) {
	if resp, handled := e.gitCapabilityQuery(userText); handled {
		e.history = append(e.history, chat.NewTextMessage(chat.RoleUser, userText))
		e.history = append(e.history, chat.NewTextMessage(chat.RoleAssistant, resp))
		e.emit(chat.TurnComplete())
		return resp, nil
	}

	readOnly := classifyReadOnly(userText)
	evidenceRequired := requiresToolEvidence(userText)

	anchorIndex := len(e.history)
	e.history = append(e.history, chat.NewTextMessage(chat.RoleUser, userText))

	turn := &turnState{
		anchorIndex:      anchorIndex,
		readOnly:         readOnly,
		evidenceRequired: evidenceRequired,
	}

	text, err := e.runRounds(ctx, turn)
	if err != nil {
		e.emit(chat.ErrorUpdate(err.Error()))
		return "", err
	}
	e.emit(chat.TurnComplete())
	return text, nil
}

// turnState holds everything that lives only for the duration of one
// SendMessage call (spec.md §3 "Lifecycle & ownership"): the current
// turn's anchor, its read-only/evidence classification, and the
// loop-detection and forced-retry counters described in Design Notes §9
// ("Keep only the previous round's signature plus two integer counters").
type turnState struct {
	anchorIndex      int
	readOnly         bool
	evidenceRequired bool

	round                int
	forcedToolRetryCount int
	sawToolRound         bool

	prevSignature   []string
	prevWasReadOnly bool
	prevWasMutating bool
	repeatStreak    int
}
