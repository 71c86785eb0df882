package engine

import "vex/protocol"

// Options holds every engine-level knob named in spec.md §6's closed
// environment/config surface, already clamped and defaulted. A config
// snapshot is taken once per Engine (Design Notes §9: "an implementer may
// centralize this into a config snapshot... without behavioral change, as
// long as each call observes a consistent view" — vex centralizes it once
// per Engine rather than once per send_message, which is the permitted
// generalization for a CLI that lives for many turns against one endpoint).
type Options struct {
	// Endpoint classification, computed once from the configured URL.
	IsLocal bool

	// Protocol-level (forwarded to package protocol).
	MaxTokens              int
	StructuredToolProtocol bool
	APIVersion             string
	Auth                   string

	// History shaping (spec.md §4.4.3, §4.4.6, §4.4.9).
	MaxAPIMessages            int
	MaxAssistantHistoryChars  int
	MaxToolResultHistoryChars int

	// Tool execution (spec.md §4.3).
	ToolTimeoutSecs int
	ToolConfirm     bool

	// Loop guards (spec.md §4.4.7).
	MaxToolRounds int

	// Wire-level debugging: when DebugPayload is set, the engine logs every
	// outbound request body and raw stream chunk to APILogPath (or the XDG
	// state dir when empty).
	DebugPayload bool
	APILogPath   string
}

// DefaultOptions returns the locality-appropriate defaults from spec.md §4
// and §6, before any environment override is applied.
func DefaultOptions(isLocal bool) Options {
	return Options{
		IsLocal:                   isLocal,
		MaxTokens:                 protocol.DefaultMaxTokens(isLocal),
		StructuredToolProtocol:    protocol.DefaultStructuredToolProtocol(isLocal),
		MaxAPIMessages:            defaultMaxAPIMessages(isLocal),
		MaxAssistantHistoryChars:  4000,
		MaxToolResultHistoryChars: 8000,
		ToolTimeoutSecs:           defaultToolTimeoutSecs(isLocal),
		ToolConfirm:               !isLocal,
		MaxToolRounds:             defaultMaxToolRounds(isLocal),
	}
}

func defaultMaxAPIMessages(isLocal bool) int {
	if isLocal {
		return 14
	}
	return 32
}

func defaultToolTimeoutSecs(isLocal bool) int {
	if isLocal {
		return 20
	}
	return 60
}

func defaultMaxToolRounds(isLocal bool) int {
	if isLocal {
		return 12
	}
	return 24
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampMaxAPIMessages clamps to [4, 128] (spec.md §4.4.3).
func ClampMaxAPIMessages(v int) int { return clampInt(v, 4, 128) }

// ClampAssistantHistoryChars clamps to [200, 20000] (spec.md §6).
func ClampAssistantHistoryChars(v int) int { return clampInt(v, 200, 20000) }

// ClampToolResultHistoryChars clamps to [200, 40000] (spec.md §6).
func ClampToolResultHistoryChars(v int) int { return clampInt(v, 200, 40000) }

// ClampToolTimeoutSecs clamps to [2, 300] (spec.md §4.3, §6).
func ClampToolTimeoutSecs(v int) int { return clampInt(v, 2, 300) }

// ClampMaxToolRounds clamps to [2, 64] (spec.md §4.4.7, §6).
func ClampMaxToolRounds(v int) int { return clampInt(v, 2, 64) }

// protocolOptions narrows Options to what package protocol needs to build a
// request body.
func (o Options) protocolOptions() protocol.Options {
	return protocol.Options{
		MaxTokens:              o.MaxTokens,
		StructuredToolProtocol: o.StructuredToolProtocol,
		APIVersion:             o.APIVersion,
		Auth:                   o.Auth,
	}
}
