package config

import (
	"fmt"
	"strings"

	"vex/protocol"
)

// Validate enforces spec.md §6/§7's Policy checks: a missing api_url, a
// missing api_key against a remote endpoint, and a model prefix that
// doesn't match the endpoint's locality all fail fast here rather than at
// request time.
func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.APIURL) == "" {
		return fmt.Errorf("config: api_url is required")
	}

	isLocal := protocol.IsLocalEndpoint(s.APIURL)

	if !isLocal && strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("config: api_key is required for a remote endpoint")
	}

	model := strings.TrimSpace(s.Model)
	if model == "" {
		return fmt.Errorf("config: model is required")
	}
	// local/* is permitted only for a local endpoint; remote always needs
	// the claude- prefix. A local endpoint otherwise accepts any model name.
	if !isLocal && !strings.HasPrefix(model, "claude-") {
		return fmt.Errorf("config: model %q must start with claude- for a remote endpoint", model)
	}

	return nil
}
