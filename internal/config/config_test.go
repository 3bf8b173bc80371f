package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate убирает влияние пользовательского конфига и окружения
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"SERVER", "STORAGE", "DB", "LOG_LEVEL", "TIMEOUT", "JWT_SECRET", "TOKEN_TTL"} {
		t.Setenv(EnvPrefix+key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadClient_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultClient(), cfg)
}

func TestLoadClient_FileAndEnv(t *testing.T) {
	isolate(t)
	t.Setenv("REVIEW_HOST", "review.example.com")

	path := writeConfig(t, `
server_url: https://${REVIEW_HOST}
storage:
  backend: dir
  path: /tmp/metareview
timeout: 5s
endpoints:
  token: /api/token
`)

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "https://review.example.com", cfg.ServerURL)
	assert.Equal(t, StorageDir, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/metareview", cfg.Storage.Path)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/api/token", cfg.Endpoints.Token)

	// Переменные окружения перекрывают файл
	t.Setenv("METAREVIEW_SERVER", "http://env:9000")
	t.Setenv("METAREVIEW_TIMEOUT", "1m")
	cfg, err = LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.ServerURL)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoadClient_Errors(t *testing.T) {
	isolate(t)

	_, err := LoadClient(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadClient(writeConfig(t, "server_url: [unclosed"))
	assert.Error(t, err)

	_, err = LoadClient(writeConfig(t, "storage:\n  backend: redis\n"))
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestLoadServer(t *testing.T) {
	isolate(t)

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg)

	t.Setenv("METAREVIEW_TOKEN_TTL", "2h")
	t.Setenv("METAREVIEW_LOGIN_RATE_LIMIT", "not-a-number")
	cfg, err = LoadServer(writeConfig(t, "addr: \":9999\"\nlogin_rate_limit: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.LoginRateLimit)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	_, err = NewLogger(&buf, "loud")
	assert.Error(t, err)
}
