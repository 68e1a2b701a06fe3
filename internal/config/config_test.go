package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10, cfg.DefaultCredits)
	assert.NotEmpty(t, cfg.AllowOrigins)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Port, cfg.Port)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9090\ndefault_credits: 25\nallow_origins:\n  - https://app.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 25, cfg.DefaultCredits)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o600))

	t.Setenv("PORT", "7777")
	t.Setenv("DEFAULT_CREDITS", "3")
	t.Setenv("ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, 3, cfg.DefaultCredits)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowOrigins)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
