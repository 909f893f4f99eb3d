package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasstrnad1997/minesserver/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfigFile(t, "debug: true\nport: 9999\nsize:\n  x: 20\n  y: 15\nfile: boards/a.txt\n")
	def, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, def.Debug)
	assert.True(t, def.DebugSet)
	assert.Equal(t, 9999, def.Port)
	assert.True(t, def.PortSet)
	assert.Equal(t, 20, def.SizeX)
	assert.Equal(t, 15, def.SizeY)
	assert.Equal(t, "boards/a.txt", def.File)
}

func TestLoadOmittedPortLeavesPortUnset(t *testing.T) {
	path := writeConfigFile(t, "size:\n  x: 8\n  y: 8\n")
	def, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, def.PortSet, "a config file that never mentions port must not claim to set it")
	assert.Equal(t, 0, def.Port)
}

func TestLoadExplicitZeroPortIsSet(t *testing.T) {
	path := writeConfigFile(t, "port: 0\n")
	def, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, def.PortSet, "an explicit port: 0 must be distinguishable from an absent key")
	assert.Equal(t, 0, def.Port)
}

func TestLoadOmittedDebugLeavesDebugUnset(t *testing.T) {
	path := writeConfigFile(t, "port: 1234\n")
	def, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, def.DebugSet)
}

func TestLoadExplicitFalseDebugIsSet(t *testing.T) {
	path := writeConfigFile(t, "debug: false\n")
	def, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, def.DebugSet)
	assert.False(t, def.Debug)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "debug: [this is not a bool\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedSize(t *testing.T) {
	path := writeConfigFile(t, "size: not-a-map\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
