package engine

import (
	"strings"

	"vex/tool"
)

// gitCapabilityQuery answers spec.md §4.4.2 item 1: if text asks what git
// tools are available, return the fixed six-tool enumeration without
// opening a network round. Grounded in style on tool.BuiltinGitTools, the
// same list tool.Catalog's git entries are built from.
func (e *Engine) gitCapabilityQuery(text string) (string, bool) {
	if !looksLikeGitToolQuery(text) {
		return "", false
	}
	var b strings.Builder
	b.WriteString("I have six built-in git tools: ")
	b.WriteString(strings.Join(tool.BuiltinGitTools, ", "))
	b.WriteString(". I don't have any other git tools available.")
	return b.String(), true
}

func looksLikeGitToolQuery(text string) bool {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "git tool") && !strings.Contains(lower, "git command") &&
		!strings.Contains(lower, "git tools") && !strings.Contains(lower, "git commands") {
		return false
	}
	triggers := []string{"what", "which", "can you", "available"}
	for _, t := range triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// readVerbs and mutatingVerbs are the closed sets from spec.md §4.4.2 item
// 2. Multi-word phrases are checked as substrings; single words are checked
// as whole words so "add" in "address" doesn't false-positive.
var readVerbs = []string{
	"show", "read", "list", "count", "how many", "what is in", "what's in",
	"whats in", "content of", "status", "diff", "log", "cat", "display", "print",
}

var mutatingVerbs = []string{
	"write", "edit", "update", "create", "add", "delete", "remove", "rename",
	"move", "commit", "stage", "patch", "apply", "implement", "refactor",
	"fix", "push", "rebase",
}

// classifyReadOnly implements spec.md §4.4.2 item 2: the request is
// read-only iff it contains at least one read verb AND no mutating verb.
func classifyReadOnly(text string) bool {
	lower := strings.ToLower(text)
	hasRead := containsAnyWord(lower, readVerbs)
	hasMutating := containsAnyWord(lower, mutatingVerbs)
	return hasRead && !hasMutating
}

// evidencePhrases is the subset of read intents that demand a concrete
// workspace fact rather than a general description (spec.md §4.4.2 item 3,
// "e.g., 'how many files'").
var evidencePhrases = []string{
	"how many", "count", "what is in", "what's in", "whats in", "content of",
}

// requiresToolEvidence implements spec.md §4.4.2 item 3: whether this
// prompt's answer must be backed by an actual tool call, used after an
// empty tool round (spec.md §4.4.3 step 7) to decide whether to force a
// retry instead of accepting a toolless answer.
func requiresToolEvidence(text string) bool {
	lower := strings.ToLower(text)
	return containsAnyWord(lower, evidencePhrases)
}

func containsAnyWord(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(p, " ") {
			if strings.Contains(lower, p) {
				return true
			}
			continue
		}
		if containsWord(lower, p) {
			return true
		}
	}
	return false
}

// containsWord reports whether word appears in lower as a standalone word
// (bounded by non-letters or string edges), so "add" doesn't match inside
// "address".
func containsWord(lower, word string) bool {
	idx := 0
	for {
		pos := strings.Index(lower[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lower[start-1])
		afterOK := end == len(lower) || !isLetter(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
