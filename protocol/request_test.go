package protocol

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vex/chat"
)

func testTools() []chat.Tool {
	return []chat.Tool{
		{Name: "read_file", Description: "read a file", Parameters: &jsonschema.Schema{Type: "object"}},
	}
}

func TestBuildAnthropicRequestMergesConsecutiveSameRoleMessages(t *testing.T) {
	messages := []chat.ApiMessage{
		chat.NewTextMessage(chat.RoleUser, "hello"),
		chat.NewBlockMessage(chat.RoleAssistant, []chat.ContentBlock{chat.NewTextBlock("hi")}),
		chat.NewBlockMessage(chat.RoleUser, []chat.ContentBlock{chat.NewToolResultBlock("t1", "ok", false)}),
		chat.NewTextMessage(chat.RoleUser, "what next"),
	}

	raw, err := BuildAnthropicRequest("claude-x", "be helpful", messages, nil, Options{MaxTokens: 1024})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "be helpful", body["system"])
	assert.Equal(t, true, body["stream"])

	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 3)

	third := msgs[2].(map[string]interface{})
	assert.Equal(t, "user", third["role"])
	content := third["content"].([]interface{})
	require.Len(t, content, 2)
}

func TestBuildAnthropicRequestOmitsToolsWhenNotStructured(t *testing.T) {
	messages := []chat.ApiMessage{chat.NewTextMessage(chat.RoleUser, "hi")}

	raw, err := BuildAnthropicRequest("claude-x", "", messages, testTools(), Options{MaxTokens: 512, StructuredToolProtocol: false})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	_, hasTools := body["tools"]
	assert.False(t, hasTools)
	_, hasSystem := body["system"]
	assert.False(t, hasSystem)
}

func TestBuildAnthropicRequestIncludesToolsWhenStructured(t *testing.T) {
	messages := []chat.ApiMessage{chat.NewTextMessage(chat.RoleUser, "hi")}

	raw, err := BuildAnthropicRequest("claude-x", "", messages, testTools(), Options{MaxTokens: 512, StructuredToolProtocol: true})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	tools := body["tools"].([]interface{})
	require.Len(t, tools, 1)
	first := tools[0].(map[string]interface{})
	assert.Equal(t, "read_file", first["name"])
	assert.Equal(t, "auto", body["tool_choice"].(map[string]interface{})["type"])
}

func TestBuildAnthropicRequestClampsMaxTokens(t *testing.T) {
	raw, err := BuildAnthropicRequest("claude-x", "", []chat.ApiMessage{chat.NewTextMessage(chat.RoleUser, "hi")}, nil, Options{MaxTokens: 1})
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(128), body["max_tokens"])
}

func TestBuildOpenAIRequestSplitsToolResultIntoSeparateMessage(t *testing.T) {
	messages := []chat.ApiMessage{
		chat.NewBlockMessage(chat.RoleAssistant, []chat.ContentBlock{
			chat.NewTextBlock("looking"),
			chat.NewToolUseBlock("t1", "read_file", chat.EmptyObject()),
		}),
		chat.NewBlockMessage(chat.RoleUser, []chat.ContentBlock{chat.NewToolResultBlock("t1", "contents", false)}),
	}

	raw, err := BuildOpenAIRequest("local/x", "be helpful", messages, nil, Options{MaxTokens: 256})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	msgs := body["messages"].([]interface{})
	// system + assistant-with-tool_calls + tool
	require.Len(t, msgs, 3)

	system := msgs[0].(map[string]interface{})
	assert.Equal(t, "system", system["role"])

	assistant := msgs[1].(map[string]interface{})
	assert.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]interface{})
	require.Len(t, calls, 1)

	toolMsg := msgs[2].(map[string]interface{})
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "t1", toolMsg["tool_call_id"])
	assert.Equal(t, "contents", toolMsg["content"])
}

func TestBuildOpenAIRequestIncludesFunctionToolsWhenStructured(t *testing.T) {
	raw, err := BuildOpenAIRequest("local/x", "", []chat.ApiMessage{chat.NewTextMessage(chat.RoleUser, "hi")}, testTools(), Options{MaxTokens: 256, StructuredToolProtocol: true})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	tools := body["tools"].([]interface{})
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]interface{})
	assert.Equal(t, "function", fn["type"])
	assert.Equal(t, "auto", body["tool_choice"])
}

func TestClampMaxTokens(t *testing.T) {
	assert.Equal(t, 128, ClampMaxTokens(1))
	assert.Equal(t, 8192, ClampMaxTokens(999999))
	assert.Equal(t, 2000, ClampMaxTokens(2000))
}

func TestDefaultMaxTokens(t *testing.T) {
	assert.Equal(t, 1024, DefaultMaxTokens(true))
	assert.Equal(t, 4096, DefaultMaxTokens(false))
}

func TestDefaultStructuredToolProtocol(t *testing.T) {
	assert.False(t, DefaultStructuredToolProtocol(true))
	assert.True(t, DefaultStructuredToolProtocol(false))
}
