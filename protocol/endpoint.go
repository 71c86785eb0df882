// Package protocol implements the Protocol Adapter (C2): endpoint
// classification, wire-protocol inference, URL normalization, and request
// body construction for the two supported chat-streaming protocols
// (Anthropic messages and OpenAI chat completions).
//
// Request-body shaping is grounded on
// sidedotdev-sidekick/llm/anthropic_tool_chat.go (tool_choice mapping,
// system-prompt handling, message merging) and
// sidedotdev-sidekick/llm/openai_tool_chat.go (message flattening to
// chat-completion roles). Endpoint classification and URL rewriting have no
// direct teacher analogue — sidekick targets one fixed provider per
// client — and are grounded in style on common/hosts_and_ports.go's
// host-string handling conventions.
package protocol

import (
	"net/url"
	"strings"
)

// WireProtocol discriminates the two supported wire protocols.
type WireProtocol int

const (
	Anthropic WireProtocol = iota
	OpenAI
)

// ProtocolOverride forces wire-protocol inference one way or the other.
// The zero value means no override (infer from the URL).
type ProtocolOverride int

const (
	NoOverride ProtocolOverride = iota
	ForceAnthropic
	ForceOpenAI
)

// IsLocalEndpoint reports whether rawURL's host is localhost, ::1, 0.0.0.0,
// or matches 127.*, after trimming and case-folding (spec.md §4.2).
func IsLocalEndpoint(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "localhost", "::1", "0.0.0.0":
		return true
	}
	return strings.HasPrefix(host, "127.")
}

// InferProtocol determines the wire protocol for rawURL, honoring an
// override if set (spec.md §4.2). If the path ends with
// "/chat/completions" or is a bare "/v1", the endpoint uses the OpenAI
// protocol; otherwise Anthropic.
func InferProtocol(rawURL string, override ProtocolOverride) WireProtocol {
	switch override {
	case ForceAnthropic:
		return Anthropic
	case ForceOpenAI:
		return OpenAI
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Anthropic
	}
	path := strings.TrimRight(u.Path, "/")
	if strings.HasSuffix(path, "/chat/completions") || path == "/v1" {
		return OpenAI
	}
	return Anthropic
}

// NormalizeOpenAIURL rewrites rawURL to the OpenAI chat-completions endpoint
// shape (spec.md §4.2):
//
//	.../v1/messages      -> .../v1/chat/completions
//	.../v1                -> .../v1/chat/completions
//	.../chat/completions -> unchanged
//
// Trailing slashes are stripped before rewriting.
func NormalizeOpenAIURL(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	switch {
	case strings.HasSuffix(trimmed, "/chat/completions"):
		return trimmed
	case strings.HasSuffix(trimmed, "/v1/messages"):
		return strings.TrimSuffix(trimmed, "/v1/messages") + "/v1/chat/completions"
	case strings.HasSuffix(trimmed, "/v1"):
		return trimmed + "/chat/completions"
	default:
		return trimmed
	}
}
