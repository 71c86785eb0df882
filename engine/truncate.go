package engine

import "fmt"

// truncateHistoryText implements spec.md §4.4.6's per-message character
// budget: content at or under budget passes through unchanged; anything
// longer keeps a head and tail half with a single marker spliced between
// them, so the tail — where the model usually expects the "answer" —
// remains visible. Grounded on dev/truncate.go's TruncateMiddle.
func truncateHistoryText(s string, budget int) string {
	if budget <= 0 || len(s) <= budget {
		return s
	}

	removed := len(s) - budget
	marker := fmt.Sprintf("\n...[truncated %d chars]...\n", removed)

	available := budget - len(marker)
	if available <= 0 {
		return s[:budget]
	}

	head := available / 2
	tail := available - head
	return s[:head] + marker + s[len(s)-tail:]
}
