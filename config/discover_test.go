package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverReturnsEmptyWhenNoCandidateExists(t *testing.T) {
	dir := t.TempDir()
	result := Discover(dir)
	assert.Equal(t, "", result.ChosenPath)
	assert.Empty(t, result.AllFound)
}

func TestDiscoverFindsConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	result := Discover(dir)
	assert.Equal(t, path, result.ChosenPath)
	assert.Equal(t, []string{path}, result.AllFound)
}

func TestParserForExtensionJSON(t *testing.T) {
	assert.NotNil(t, parserForExtension("config.json"))
	assert.NotNil(t, parserForExtension("CONFIG.JSON"))
}

func TestParserForExtensionUnsupported(t *testing.T) {
	assert.Nil(t, parserForExtension("config.yaml"))
	assert.Nil(t, parserForExtension("config"))
}

func TestDirEndsWithVex(t *testing.T) {
	assert.Equal(t, "vex", filepath.Base(Dir()))
}
