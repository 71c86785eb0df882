// Package config loads the closed environment/config surface from spec.md
// §6 into a single config.Snapshot, read once at startup (Design Notes §9:
// "an implementer may centralize this into a config snapshot... without
// behavioral change"). Grounded on
// sidedotdev-sidekick/common/local_config.go (koanf+struct-tags+Validate
// pattern) and common/config_discovery.go (file discovery by extension).
package config

// Snapshot holds every key from spec.md §6's environment/config table.
// Pointer fields (ToolConfirm, StructuredToolProtocol) distinguish "not set"
// from an explicit false, since their defaults depend on endpoint locality
// and must not be clobbered by a zero value nobody asked for.
type Snapshot struct {
	APIURL string `koanf:"api_url"`
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`

	MaxTokens                 int `koanf:"max_tokens"`
	MaxAPIMessages            int `koanf:"max_api_messages"`
	MaxAssistantHistoryChars  int `koanf:"max_assistant_history_chars"`
	MaxToolResultHistoryChars int `koanf:"max_tool_result_history_chars"`
	ToolTimeoutSecs           int `koanf:"tool_timeout_secs"`
	MaxToolRounds             int `koanf:"max_tool_rounds"`

	ToolConfirm            *bool `koanf:"tool_confirm"`
	StructuredToolProtocol *bool `koanf:"structured_tool_protocol"`

	StructuredBlocks      bool `koanf:"structured_blocks"`
	StreamServerEvents    bool `koanf:"stream_server_events"`
	StreamLocalToolEvents bool `koanf:"stream_local_tool_events"`

	DebugPayload bool   `koanf:"debug_payload"`
	APILogPath   string `koanf:"api_log_path"`
}
