package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
host = "localhost"
port = 8090
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "gymtrack"
uploads_root_path = "/tmp/gymtrack/uploads"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"

[production]
host = ""
port = 8080
log_level = "debug"
logs_path = "/var/log/gymtrack/service.log"
sentry_enabled = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "gymtrack"
uploads_root_path = "/var/gymtrack/uploads"
prometheus_metrics_host = ""
prometheus_metrics_port = "2112"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigToml), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t)

	cfg, err := Load("development", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.False(t, cfg.SentryEnabled)
	assert.Equal(t, "gymtrack", cfg.PostgresDBName)
	assert.Equal(t, "/tmp/gymtrack/uploads", cfg.UploadsRootPath)

	cfg, err = Load("prod", path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.SentryEnabled)
	assert.Equal(t, "/var/log/gymtrack/service.log", cfg.LogsPath)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t)

	t.Setenv("GYMTRACK_PORT", "9999")
	t.Setenv("GYMTRACK_POSTGRES_HOST", "db.internal")

	cfg, err := Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	// untouched values survive the override pass
	assert.Equal(t, "gymtrack", cfg.PostgresDBName)
}

func TestLoad_UnknownEnv(t *testing.T) {
	path := writeTestConfig(t)

	cfg, err := Load("staging", path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown env")
}
