package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsLocal(t *testing.T) {
	o := DefaultOptions(true)
	assert.True(t, o.IsLocal)
	assert.Equal(t, 1024, o.MaxTokens)
	assert.False(t, o.StructuredToolProtocol)
	assert.Equal(t, 14, o.MaxAPIMessages)
	assert.Equal(t, 20, o.ToolTimeoutSecs)
	assert.False(t, o.ToolConfirm)
	assert.Equal(t, 12, o.MaxToolRounds)
}

func TestDefaultOptionsRemote(t *testing.T) {
	o := DefaultOptions(false)
	assert.False(t, o.IsLocal)
	assert.Equal(t, 4096, o.MaxTokens)
	assert.True(t, o.StructuredToolProtocol)
	assert.Equal(t, 32, o.MaxAPIMessages)
	assert.Equal(t, 60, o.ToolTimeoutSecs)
	assert.True(t, o.ToolConfirm)
	assert.Equal(t, 24, o.MaxToolRounds)
}

func TestClampMaxAPIMessages(t *testing.T) {
	assert.Equal(t, 4, ClampMaxAPIMessages(0))
	assert.Equal(t, 128, ClampMaxAPIMessages(9999))
	assert.Equal(t, 50, ClampMaxAPIMessages(50))
}

func TestClampAssistantHistoryChars(t *testing.T) {
	assert.Equal(t, 200, ClampAssistantHistoryChars(1))
	assert.Equal(t, 20000, ClampAssistantHistoryChars(999999))
}

func TestClampToolResultHistoryChars(t *testing.T) {
	assert.Equal(t, 200, ClampToolResultHistoryChars(1))
	assert.Equal(t, 40000, ClampToolResultHistoryChars(999999))
}

func TestClampToolTimeoutSecs(t *testing.T) {
	assert.Equal(t, 2, ClampToolTimeoutSecs(0))
	assert.Equal(t, 300, ClampToolTimeoutSecs(9999))
}

func TestClampMaxToolRounds(t *testing.T) {
	assert.Equal(t, 2, ClampMaxToolRounds(0))
	assert.Equal(t, 64, ClampMaxToolRounds(9999))
}

func TestProtocolOptionsNarrowsFields(t *testing.T) {
	o := Options{MaxTokens: 2048, StructuredToolProtocol: true, APIVersion: "v1", Auth: "secret"}
	p := o.protocolOptions()
	assert.Equal(t, 2048, p.MaxTokens)
	assert.True(t, p.StructuredToolProtocol)
	assert.Equal(t, "v1", p.APIVersion)
	assert.Equal(t, "secret", p.Auth)
}
