package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"http": { "port": "8085" },
		"db": { "host": "10.0.0.1", "port": "5433" },
		"replay": { "interval": "80ms" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tripcast.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "8085", viper.GetString("http.port"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
	assert.Equal(t, 80*time.Millisecond, GetReplayConfig().Interval)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tripcast.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "3001", viper.GetString("http.port"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "tripcast", viper.GetString("db.database"))
	assert.Equal(t, "postgres", GetStorageConfig().Type)
	assert.Equal(t, 2*time.Second, GetReplayConfig().Interval)
	assert.Equal(t, 1e-4, GetReplayConfig().SnapTolerance)
	assert.Equal(t, true, GetOSRMConfig().Enabled)
	assert.Equal(t, "https://router.project-osrm.org", GetOSRMConfig().BaseURL)
	assert.Equal(t, 30*time.Second, GetOSRMConfig().Timeout)
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "replay_metrics", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}
