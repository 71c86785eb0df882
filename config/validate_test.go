package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresAPIURL(t *testing.T) {
	s := Snapshot{Model: "claude-x"}
	assert.Error(t, s.Validate())
}

func TestValidateRequiresAPIKeyForRemote(t *testing.T) {
	s := Snapshot{APIURL: "https://api.anthropic.com", Model: "claude-x"}
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestValidateRemoteAllowsMissingKeyCheckOnceSet(t *testing.T) {
	s := Snapshot{APIURL: "https://api.anthropic.com", APIKey: "sk-123", Model: "claude-x"}
	assert.NoError(t, s.Validate())
}

func TestValidateLocalDoesNotRequireAPIKey(t *testing.T) {
	s := Snapshot{APIURL: "http://localhost:11434/v1", Model: "local/llama"}
	assert.NoError(t, s.Validate())
}

func TestValidateRequiresModel(t *testing.T) {
	s := Snapshot{APIURL: "http://localhost:11434/v1"}
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestValidateRemoteModelMustStartWithClaudePrefix(t *testing.T) {
	s := Snapshot{APIURL: "https://api.anthropic.com", APIKey: "sk-123", Model: "gpt-4"}
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "claude-")
}

func TestValidateRemoteRejectsLocalPrefixedModel(t *testing.T) {
	s := Snapshot{APIURL: "https://api.anthropic.com", APIKey: "sk-123", Model: "local/llama"}
	assert.Error(t, s.Validate())
}

func TestValidateLocalAcceptsAnyModelName(t *testing.T) {
	s := Snapshot{APIURL: "http://localhost:11434/v1", Model: "claude-x"}
	assert.NoError(t, s.Validate())

	s.Model = "whatever-model"
	assert.NoError(t, s.Validate())
}
