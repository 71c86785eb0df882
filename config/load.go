package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "VEX_"

// Load builds a Snapshot from, in increasing precedence: the discovered
// config file (if any), then environment variables. configPath overrides
// file discovery when non-empty; pass "" to use Discover(Dir()). Fields left
// unset by both sources keep their zero value; Resolve treats zero as "no
// override" and falls back to engine.DefaultOptions. Load does not
// call Validate; callers validate separately so partial/diagnostic commands
// (e.g. "vex config show") can display an invalid snapshot instead of
// refusing to load it at all.
func Load(configPath string) (Snapshot, string, error) {
	k := koanf.New(".")

	chosenPath := configPath
	if chosenPath == "" {
		chosenPath = Discover(Dir()).ChosenPath
	}
	if chosenPath != "" {
		parser := parserForExtension(chosenPath)
		if parser == nil {
			return Snapshot{}, "", fmt.Errorf("unsupported config file extension: %s", chosenPath)
		}
		if err := k.Load(file.Provider(chosenPath), parser); err != nil {
			return Snapshot{}, "", fmt.Errorf("loading config file %s: %w", chosenPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Snapshot{}, "", fmt.Errorf("loading environment overrides: %w", err)
	}

	var snap Snapshot
	if err := k.Unmarshal("", &snap); err != nil {
		return Snapshot{}, "", fmt.Errorf("unmarshaling config: %w", err)
	}
	return snap, chosenPath, nil
}
