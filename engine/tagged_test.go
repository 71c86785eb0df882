package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vex/chat"
)

func TestParseTaggedCallsSingleCall(t *testing.T) {
	text := "<function=read_file>\n<parameter=path>\na.go\n</parameter>\n</function>"
	calls := parseTaggedCalls(text, 1)
	require.Len(t, calls, 1)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "toolu_tagged_1_0", calls[0].ID)
	path, ok := calls[0].Input.Object["path"].AsString()
	assert.True(t, ok)
	assert.Equal(t, "a.go", path)
}

func TestParseTaggedCallsMultipleCalls(t *testing.T) {
	text := "<function=read_file>\n<parameter=path>\na.go\n</parameter>\n</function>\n" +
		"<function=list_files>\n<parameter=path>\n.\n</parameter>\n</function>"
	calls := parseTaggedCalls(text, 2)
	require.Len(t, calls, 2)
	assert.Equal(t, "toolu_tagged_2_0", calls[0].ID)
	assert.Equal(t, "toolu_tagged_2_1", calls[1].ID)
}

func TestParseTaggedCallsNoCallsReturnsNil(t *testing.T) {
	calls := parseTaggedCalls("just plain prose, no tags here", 1)
	assert.Nil(t, calls)
}

func TestParseTaggedCallsUnclosedTagConsumesRest(t *testing.T) {
	text := "<function=read_file>\n<parameter=path>\na.go"
	calls := parseTaggedCalls(text, 1)
	require.Len(t, calls, 1)
	path, ok := calls[0].Input.Object["path"].AsString()
	assert.True(t, ok)
	assert.Equal(t, "a.go", path)
}

func TestNormalizeTaggedValueTrimsOneLeadingAndTrailingNewline(t *testing.T) {
	assert.Equal(t, "a.go", normalizeTaggedValue("\na.go\n"))
	assert.Equal(t, "\na.go\n", normalizeTaggedValue("\n\na.go\n\n"))
	assert.Equal(t, "multi\nline", normalizeTaggedValue("multi\nline"))
}

func TestNormalizeTaggedValueCRLF(t *testing.T) {
	assert.Equal(t, "a\nb", normalizeTaggedValue("a\r\nb"))
}

func TestRenderTaggedCallsRoundTripsThroughParse(t *testing.T) {
	input := chat.Value{Kind: chat.KindObject, Object: map[string]chat.Value{
		"path":    {Kind: chat.KindString, Str: "a.go"},
		"old_str": {Kind: chat.KindString, Str: "old"},
	}}
	calls := []chat.ContentBlock{chat.NewToolUseBlock("toolu_1", "edit_file", input)}

	rendered := renderTaggedCalls(calls)
	parsed := parseTaggedCalls(rendered, 1)

	require.Len(t, parsed, 1)
	assert.Equal(t, "edit_file", parsed[0].Name)
	path, _ := parsed[0].Input.Object["path"].AsString()
	oldStr, _ := parsed[0].Input.Object["old_str"].AsString()
	assert.Equal(t, "a.go", path)
	assert.Equal(t, "old", oldStr)
}

func TestRenderTaggedCallsOrdersParametersLexicographically(t *testing.T) {
	input := chat.Value{Kind: chat.KindObject, Object: map[string]chat.Value{
		"zeta":  {Kind: chat.KindString, Str: "z"},
		"alpha": {Kind: chat.KindString, Str: "a"},
	}}
	calls := []chat.ContentBlock{chat.NewToolUseBlock("toolu_1", "write_file", input)}

	rendered := renderTaggedCalls(calls)
	alphaIdx := indexOf(rendered, "<parameter=alpha>")
	zetaIdx := indexOf(rendered, "<parameter=zeta>")
	assert.Greater(t, zetaIdx, alphaIdx)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
