// Package ui implements the UI Update Channel (C5): a single-producer,
// ordered stream of chat.UiUpdate values from the Turn Engine to a
// rendering frontend (spec.md §4.5).
//
// The channel itself is a plain, unbounded-by-buffering Go channel — the
// engine is the sole producer and blocks on send only when the consumer is
// slow to drain, which is the ordering guarantee spec.md §5 calls for
// ("UI updates are emitted in strict program order on a single producer").
// Grounded in shape on the api.StreamHandler callback seam in
// d1a82041_danielbrauer-ClaudeCodeGo__internal-conversation-loop.go.go and
// on how sidedotdev-sidekick/tui/task_progress_view.go and
// tui/task_monitor.go consume an incremental update stream and re-render.
package ui

import "vex/chat"

// Channel is the engine-to-frontend update stream. The engine owns Send;
// the frontend owns Recv (or Updates for a range loop).
type Channel struct {
	ch chan chat.UiUpdate
}

// NewChannel allocates a Channel with the given buffer size. A small buffer
// (cli uses 64) lets the engine get a few updates ahead of a
// busy renderer without blocking on every send; size 0 gives a fully
// synchronous rendezvous.
func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{ch: make(chan chat.UiUpdate, buffer)}
}

// Send publishes one update. It blocks if the channel is unbuffered or full,
// which is the "lock acquisition only" suspension point named in spec.md §5.
func (c *Channel) Send(u chat.UiUpdate) {
	c.ch <- u
}

// Close signals no further updates will be sent. Callers must not Send after
// Close.
func (c *Channel) Close() {
	close(c.ch)
}

// Updates exposes the receive side for a `for update := range ch.Updates()`
// consumer loop.
func (c *Channel) Updates() <-chan chat.UiUpdate {
	return c.ch
}
