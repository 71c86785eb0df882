package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotCacheObserve(t *testing.T) {
	c := NewSnapshotCache()

	state, snap := c.Observe("a.go", "package a\n")
	assert.Equal(t, ReadFirst, state)
	assert.Equal(t, len("package a\n"), snap.CharCount)

	state, prev := c.Observe("a.go", "package a\n")
	assert.Equal(t, ReadUnchanged, state)
	assert.Equal(t, len("package a\n"), prev.CharCount)

	state, prev = c.Observe("a.go", "package a\n\nfunc f() {}\n")
	assert.Equal(t, ReadChanged, state)
	assert.Equal(t, len("package a\n"), prev.CharCount)

	state, _ = c.Observe("a.go", "package a\n\nfunc f() {}\n")
	assert.Equal(t, ReadUnchanged, state)
}

func TestHashContentStableWithinProcess(t *testing.T) {
	assert.Equal(t, HashContent("x"), HashContent("x"))
	assert.NotEqual(t, HashContent("x"), HashContent("y"))
}
