package chat

// UiUpdateKind discriminates the UiUpdate variant emitted on the C5 channel.
type UiUpdateKind int

const (
	UpdateStreamBlockStart UiUpdateKind = iota
	UpdateStreamBlockDelta
	UpdateStreamBlockComplete
	UpdateToolApprovalRequest
	UpdateTurnComplete
	UpdateError
)

// ApprovalDecision is sent exactly once into an ApprovalResponse channel:
// true approves the tool call, false denies it. The engine receives it
// together with the ok flag, so a channel closed without a value counts as
// a denial.
type ApprovalDecision = bool

// ApprovalResponse is the single-shot, one-way channel carried by a
// ToolApprovalRequest update. The engine allocates it and waits on the
// receiving side; the frontend sends exactly one decision into it. If the
// engine's context is cancelled first, the engine stops waiting and treats
// the call as denied; the channel's buffer of one lets a late decision be
// sent without blocking the frontend.
type ApprovalResponse chan ApprovalDecision

// NewApprovalResponse allocates a single-shot approval channel.
func NewApprovalResponse() ApprovalResponse {
	return make(ApprovalResponse, 1)
}

// UiUpdate is one event in the ordered stream the Turn Engine emits to a
// rendering frontend (spec.md §3, §4.5).
type UiUpdate struct {
	Kind UiUpdateKind

	// StreamBlockStart / StreamBlockDelta / StreamBlockComplete.
	Index int
	Block StreamBlock

	// ToolApprovalRequest.
	ToolName         string
	InputPreview     string
	ResponseChannel  ApprovalResponse

	// Error.
	Message string
}

func StreamBlockStart(index int, block StreamBlock) UiUpdate {
	return UiUpdate{Kind: UpdateStreamBlockStart, Index: index, Block: block}
}

func StreamBlockDelta(index int, block StreamBlock) UiUpdate {
	return UiUpdate{Kind: UpdateStreamBlockDelta, Index: index, Block: block}
}

func StreamBlockComplete(index int) UiUpdate {
	return UiUpdate{Kind: UpdateStreamBlockComplete, Index: index}
}

func ToolApprovalRequest(toolName, inputPreview string, ch ApprovalResponse) UiUpdate {
	return UiUpdate{Kind: UpdateToolApprovalRequest, ToolName: toolName, InputPreview: inputPreview, ResponseChannel: ch}
}

func TurnComplete() UiUpdate {
	return UiUpdate{Kind: UpdateTurnComplete}
}

func ErrorUpdate(message string) UiUpdate {
	return UiUpdate{Kind: UpdateError, Message: message}
}
