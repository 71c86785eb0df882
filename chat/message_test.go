package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsToolResultCarrying(t *testing.T) {
	withResult := NewBlockMessage(RoleUser, []ContentBlock{NewToolResultBlock("t1", "ok", false)})
	assert.True(t, withResult.IsToolResultCarrying())

	withoutResult := NewBlockMessage(RoleAssistant, []ContentBlock{NewTextBlock("hi"), NewToolUseBlock("t1", "read_file", EmptyObject())})
	assert.False(t, withoutResult.IsToolResultCarrying())

	plain := NewTextMessage(RoleUser, "hi")
	assert.False(t, plain.IsToolResultCarrying())
}

func TestToolUses(t *testing.T) {
	msg := NewBlockMessage(RoleAssistant, []ContentBlock{
		NewTextBlock("looking..."),
		NewToolUseBlock("t1", "read_file", EmptyObject()),
		NewToolUseBlock("t2", "list_files", EmptyObject()),
	})
	uses := msg.ToolUses()
	assert.Len(t, uses, 2)
	assert.Equal(t, "t1", uses[0].ID)
	assert.Equal(t, "t2", uses[1].ID)
}

func TestPlainText(t *testing.T) {
	plain := NewTextMessage(RoleUser, "hello")
	assert.Equal(t, "hello", plain.PlainText())

	blocks := NewBlockMessage(RoleAssistant, []ContentBlock{
		NewTextBlock("a"),
		NewToolUseBlock("t1", "read_file", EmptyObject()),
		NewTextBlock("b"),
	})
	assert.Equal(t, "ab", blocks.PlainText())
}
