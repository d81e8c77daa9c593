package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log_level: debug
log_folder: ./logs
server:
  host: 127.0.0.1
  port: "8090"
  shutdown_timeout: 15s
store:
  origin: http://store.local:8080
activity:
  enable: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "8090", config.Server.Port)
	assert.Equal(t, 15*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "http://store.local:8080", config.Store.Origin)
	assert.True(t, config.Activity.Enable)
	assert.Equal(t, "debug", config.LogLevel.String())

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvs(t *testing.T) {
	t.Setenv("DCAT_STORE_ORIGIN", "http://env.local:9000")
	t.Setenv("DCAT_LOCALE", "en")
	config := &Config{Store: StoreConfig{Origin: "http://file.local"}}
	require.NoError(t, LoadConfigEnvs(ConfigEnvPrefix, config))
	assert.Equal(t, "http://env.local:9000", config.Store.Origin)
	assert.Equal(t, "en", config.Locale)
}

func TestInitConfig(t *testing.T) {
	t.Run("should pass: defaults are set", func(t *testing.T) {
		config := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: "8090"}}
		require.NoError(t, InitConfig(config, "abc123", "v1.0.0", "2023-07-02"))
		assert.Equal(t, DefaultOrigin, config.Store.Origin)
		assert.Equal(t, DefaultLocale, config.Locale)
		assert.Equal(t, DefaultLogMaxSize, config.LogMaxSize)
		assert.Equal(t, "abc123", config.GitCommit)
		assert.Equal(t, "v1.0.0", config.GitTag)
	})

	t.Run("should fail: missing server address", func(t *testing.T) {
		assert.Error(t, InitConfig(&Config{}, "", "", ""))
	})

	t.Run("should fail: invalid origin", func(t *testing.T) {
		config := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: "8090"}, Store: StoreConfig{Origin: "localhost"}}
		assert.Error(t, InitConfig(config, "", "", ""))
	})

	t.Run("should fail: journal without redis", func(t *testing.T) {
		config := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: "8090"}, Activity: ActivityConfig{Enable: true}}
		assert.Error(t, InitConfig(config, "", "", ""))
	})
}
