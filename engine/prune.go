package engine

// pruneHistory implements spec.md §4.4.9: trim history to at most
// MaxAPIMessages before each round. The window start may be pulled back to
// the turn's anchor user message when the anchor is within 2 messages of
// it, then advanced forward past any tool_result-carrying messages so the
// first retained message is never one of those; if no valid start can be
// found within the remaining history, clear it entirely rather than send a
// window that can't satisfy the invariant.
func (e *Engine) pruneHistory(turn *turnState) {
	limit := e.Opts.MaxAPIMessages
	if len(e.history) <= limit {
		return
	}

	start := len(e.history) - limit
	if start > turn.anchorIndex && start-turn.anchorIndex <= 2 {
		start = turn.anchorIndex
	}

	for start < len(e.history) && e.history[start].IsToolResultCarrying() {
		start++
	}

	if start >= len(e.history) {
		e.history = nil
		turn.anchorIndex = 0
		return
	}

	e.history = e.history[start:]
	turn.anchorIndex -= start
	if turn.anchorIndex < 0 {
		turn.anchorIndex = 0
	}
}
