package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTuningFallsBackToEmbeddedDefault(t *testing.T) {
	cfg, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, -10.0, cfg.GravityY)
	assert.Equal(t, 8, cfg.VelocityIterations)
	assert.True(t, cfg.WarmStarting)
}

func TestLoadScenarioFallsBackToEmbeddedDefault(t *testing.T) {
	cfg, err := LoadScenario("")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Bodies)
	require.NotEmpty(t, cfg.Joints)
}

func TestLoadTuningReadsCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gravity_x: 1\ngravity_y: -5\nvelocity_iterations: 4\n"), 0o644))

	cfg, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.GravityX)
	assert.Equal(t, -5.0, cfg.GravityY)
	assert.Equal(t, 4, cfg.VelocityIterations)
}

func TestLoadTuningRejectsUnreadableCustomPath(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
