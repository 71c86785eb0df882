package chat

import (
	"hash/fnv"
	"sync"
)

// FileSnapshot is the cached state of one read_file result (spec.md §3).
type FileSnapshot struct {
	Hash      uint64
	CharCount int
	LineCount int
}

// ReadState is the outcome of comparing a read against the cache.
type ReadState int

const (
	ReadFirst ReadState = iota
	ReadUnchanged
	ReadChanged
)

// SnapshotCache collapses repeated read_file results in history into short
// summaries when content is unchanged. The hash is process-scoped and need
// not be cryptographic or stable across restarts (spec.md §3, §9 Open
// Questions: "Preserve per-process scope; do not attempt cross-run
// persistence.").
type SnapshotCache struct {
	mu   sync.Mutex
	byPath map[string]FileSnapshot
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{byPath: make(map[string]FileSnapshot)}
}

// HashContent computes a stable-within-process, non-cryptographic hash.
func HashContent(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return h.Sum64()
}

// Observe records a read of path with the given content and reports how it
// compares to the previously cached snapshot (if any).
func (c *SnapshotCache) Observe(path, content string) (ReadState, FileSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := FileSnapshot{
		Hash:      HashContent(content),
		CharCount: len(content),
		LineCount: countLines(content),
	}

	prev, ok := c.byPath[path]
	c.byPath[path] = snap
	if !ok {
		return ReadFirst, snap
	}
	if prev.Hash == snap.Hash {
		return ReadUnchanged, prev
	}
	return ReadChanged, prev
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
