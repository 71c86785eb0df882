package chat

// StreamEventKind discriminates the StreamEvent variant emitted by the
// stream frame parser (package stream), unified across both wire protocols.
type StreamEventKind int

const (
	EventMessageStart StreamEventKind = iota
	EventContentBlockStart
	EventContentBlockDelta
	EventContentBlockStop
	EventMessageDelta
	EventMessageStop
	EventUnknown
)

// StreamEvent is the unified, protocol-independent event produced by
// package stream for one SSE frame (spec.md §3, §4.1). Indices are
// per-message block positions; they need not be contiguous or arrive in
// index order, but deltas for a given index arrive in order.
type StreamEvent struct {
	Kind StreamEventKind

	// ContentBlockStart / ContentBlockDelta / ContentBlockStop.
	Index int
	Block ContentBlock // ContentBlockStart only: the block being opened

	// ContentBlockDelta.
	TextDelta        string
	PartialJSONDelta string
	HasTextDelta     bool
	HasPartialJSON   bool

	// MessageDelta.
	StopReason string
	HasStopReason bool
}
