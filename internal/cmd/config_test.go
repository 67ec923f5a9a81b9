package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := loadConfig("")
	req.NoError(err)
	req.Equal(8080, cfg.Server.Port)
	req.False(cfg.Relay.Enabled)
	req.Equal("BUZZER_EVENTS", cfg.Relay.Stream)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("server:\n  port: 9000\nrelay:\n  enabled: true\n"), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("RELAY_NATS_URL", "nats://queue:4222")

	cfg, err := loadConfig(path)
	req.NoError(err)
	req.Equal(9100, cfg.Server.Port, "env overrides file")
	req.True(cfg.Relay.Enabled)
	req.Equal("nats://queue:4222", cfg.Relay.URL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig("/does/not/exist.yaml")
	require.Error(t, err)
}
