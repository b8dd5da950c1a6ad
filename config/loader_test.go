package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goto/pulse/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	t.Run("loads values and applies defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
log:
  level: DEBUG
monitor:
  registry:
    host: http://registry.local
  report_endpoint: http://statusboard.local
`)

		conf, err := config.LoadServerConfig(path)
		assert.NoError(t, err)
		assert.Equal(t, "DEBUG", conf.Log.Level.String())
		assert.Equal(t, 9100, conf.Serve.Port)
		assert.Equal(t, 60, conf.Monitor.TickIntervalInSeconds)
		assert.Equal(t, "http://registry.local", conf.Monitor.Registry.Host)
	})
	t.Run("rejects a missing registry host", func(t *testing.T) {
		path := writeConfigFile(t, `
monitor:
  report_endpoint: http://statusboard.local
`)

		conf, err := config.LoadServerConfig(path)
		assert.Error(t, err)
		assert.Nil(t, conf)
	})
	t.Run("rejects a negative tick interval", func(t *testing.T) {
		path := writeConfigFile(t, `
monitor:
  registry:
    host: http://registry.local
  tick_interval_in_seconds: -5
`)

		conf, err := config.LoadServerConfig(path)
		assert.Error(t, err)
		assert.Nil(t, conf)
	})
}
