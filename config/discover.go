package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
)

// candidateFiles lists config file names in precedence order. Only JSON is
// wired to a parser today (spec.md's closed config surface is flat
// key/value, no need for YAML/TOML nesting), but the name stays plural to
// leave room for the others without an API change.
var candidateFiles = []string{"config.json"}

// Dir returns the directory vex looks for its config file in, preferring a
// ".config"-named XDG config dir when one is present for developer
// accessibility, same as sidekick's GetSidekickConfigDir.
func Dir() string {
	dir := xdg.ConfigHome
	for _, d := range xdg.ConfigDirs {
		if filepath.Base(d) == ".config" {
			dir = d
			break
		}
	}
	return filepath.Join(dir, "vex")
}

// DiscoveryResult holds the outcome of searching Dir() for a config file.
type DiscoveryResult struct {
	// ChosenPath is the highest-precedence existing file, or "" if none exist.
	ChosenPath string
	AllFound   []string
}

// Discover searches dir for the candidate config file names in precedence
// order, grounded on common/config_discovery.go's DiscoverConfigFile.
func Discover(dir string) DiscoveryResult {
	var result DiscoveryResult
	for _, candidate := range candidateFiles {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			result.AllFound = append(result.AllFound, path)
			if result.ChosenPath == "" {
				result.ChosenPath = path
			}
		}
	}
	return result
}

// parserForExtension returns the koanf parser matching path's extension, or
// nil for an unsupported one, grounded on
// common/config_discovery.go's GetParserForExtension.
func parserForExtension(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Parser()
	default:
		return nil
	}
}
