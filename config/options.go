package config

import (
	"vex/engine"
	"vex/protocol"
)

// Resolved bundles everything derived from a validated Snapshot that
// cmd/vex needs to construct an Engine: the endpoint, its wire protocol,
// and the engine Options built from the snapshot's overrides layered onto
// engine.DefaultOptions(isLocal).
type Resolved struct {
	Endpoint string
	Wire     protocol.WireProtocol
	Model    string
	Opts     engine.Options
}

// Resolve turns a validated Snapshot into a Resolved bundle. Zero-valued
// int fields and nil bool-pointer fields are treated as "not overridden"
// and left at engine.DefaultOptions' locality-appropriate default.
func (s Snapshot) Resolve() Resolved {
	isLocal := protocol.IsLocalEndpoint(s.APIURL)
	opts := engine.DefaultOptions(isLocal)

	if s.MaxTokens != 0 {
		opts.MaxTokens = protocol.ClampMaxTokens(s.MaxTokens)
	}
	if s.MaxAPIMessages != 0 {
		opts.MaxAPIMessages = engine.ClampMaxAPIMessages(s.MaxAPIMessages)
	}
	if s.MaxAssistantHistoryChars != 0 {
		opts.MaxAssistantHistoryChars = engine.ClampAssistantHistoryChars(s.MaxAssistantHistoryChars)
	}
	if s.MaxToolResultHistoryChars != 0 {
		opts.MaxToolResultHistoryChars = engine.ClampToolResultHistoryChars(s.MaxToolResultHistoryChars)
	}
	if s.ToolTimeoutSecs != 0 {
		opts.ToolTimeoutSecs = engine.ClampToolTimeoutSecs(s.ToolTimeoutSecs)
	}
	if s.MaxToolRounds != 0 {
		opts.MaxToolRounds = engine.ClampMaxToolRounds(s.MaxToolRounds)
	}
	if s.ToolConfirm != nil {
		opts.ToolConfirm = *s.ToolConfirm
	}
	if s.StructuredToolProtocol != nil {
		opts.StructuredToolProtocol = *s.StructuredToolProtocol
	}
	opts.Auth = s.APIKey
	opts.DebugPayload = s.DebugPayload
	opts.APILogPath = s.APILogPath

	wire := protocol.InferProtocol(s.APIURL, protocol.NoOverride)

	return Resolved{
		Endpoint: s.APIURL,
		Wire:     wire,
		Model:    s.Model,
		Opts:     opts,
	}
}
