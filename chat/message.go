package chat

// Role is the role of an ApiMessage in conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// BlockKind discriminates the ContentBlock variant.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockToolUse
	BlockToolResult
)

// ContentBlock is a tagged variant: Text, ToolUse, or ToolResult. Exactly
// the fields relevant to Kind are populated; see spec.md §3.
type ContentBlock struct {
	Kind BlockKind

	// Text block.
	Text string

	// ToolUse block.
	ID    string
	Name  string
	Input Value

	// ToolResult block.
	ToolUseID string
	Content   string
	IsError   bool
}

func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

func NewToolUseBlock(id, name string, input Value) ContentBlock {
	return ContentBlock{Kind: BlockToolUse, ID: id, Name: name, Input: input}
}

func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// ApiMessage is one entry in the conversation history exposed to the model.
// Content is either a plain string (when len(Blocks) == 0 and Text != "") or
// a sequence of ContentBlocks.
type ApiMessage struct {
	Role   Role
	Text   string
	Blocks []ContentBlock
}

// NewTextMessage builds a plain-text ApiMessage.
func NewTextMessage(role Role, text string) ApiMessage {
	return ApiMessage{Role: role, Text: text}
}

// NewBlockMessage builds a structured ApiMessage carrying content blocks.
func NewBlockMessage(role Role, blocks []ContentBlock) ApiMessage {
	return ApiMessage{Role: role, Blocks: blocks}
}

// IsToolResultCarrying reports whether this message's content includes a
// ToolResult block — used by the history-pruning invariant in spec.md §4.4.9.
func (m ApiMessage) IsToolResultCarrying() bool {
	for _, b := range m.Blocks {
		if b.Kind == BlockToolResult {
			return true
		}
	}
	return false
}

// ToolUses returns only the ToolUse blocks in this message, in order.
func (m ApiMessage) ToolUses() []ContentBlock {
	var out []ContentBlock
	for _, b := range m.Blocks {
		if b.Kind == BlockToolUse {
			out = append(out, b)
		}
	}
	return out
}

// PlainText concatenates the text content of a message, whether it's a bare
// string or a sequence of Text blocks.
func (m ApiMessage) PlainText() string {
	if len(m.Blocks) == 0 {
		return m.Text
	}
	var out string
	for _, b := range m.Blocks {
		if b.Kind == BlockText {
			out += b.Text
		}
	}
	return out
}
