package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/iptvbot/core/database"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
evolution:
  url: "http://gateway:8080/"
database:
  user: "iptvbot"
  name: "iptvbot"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://gateway:8080", cfg.Evolution.URL, "trailing slash trimmed")
	assert.Equal(t, "default", cfg.Evolution.Instance)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Listen)
	assert.Equal(t, 3002, cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval())
	assert.Equal(t, 2*time.Hour, cfg.Session.Retention())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
evolution:
  url: "http://gateway:8080"
  instance: "from-file"
database:
  user: "iptvbot"
  name: "iptvbot"
`)

	t.Setenv("INSTANCE_NAME", "from-env")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Evolution.Instance)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestNormalizeRejectsMissingGatewayURL(t *testing.T) {
	cfg := &Config{}
	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evolution.url")
}

func TestNormalizeRequiresAdminIDWithToken(t *testing.T) {
	cfg := &Config{
		Evolution: EvolutionConfig{URL: "http://gateway:8080"},
		Telegram:  TelegramConfig{Token: "123:abc"},
		Database:  coredatabase.Config{User: "u", Name: "n"},
	}
	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.admin_id")

	cfg.Telegram.AdminID = 42
	require.NoError(t, Normalize(cfg))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
