package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes the trip store backend.
type StorageConfig struct {
	Type string `json:"type" mapstructure:"type"` // "postgres", "sqlite" or "memory"

	// SqlitePath is the database file for the sqlite backend. Empty means
	// in-memory.
	SqlitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// ReplayConfig holds the playback engine settings.
type ReplayConfig struct {
	// Interval is the fixed tick cadence of a replay session.
	Interval time.Duration
	// SnapTolerance is the per-axis degree tolerance used to match
	// dense-path coordinates back to recorded waypoints.
	SnapTolerance float64
}

// OSRMConfig holds the road-snapping service settings.
type OSRMConfig struct {
	BaseURL string
	Timeout time.Duration
	Enabled bool
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing tripcast.cfg.json.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("http.port", "3001")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tripcast")

	viper.SetDefault("storage.type", "postgres")
	viper.SetDefault("storage.sqlitePath", "")

	viper.SetDefault("replay.interval", "2s")
	viper.SetDefault("replay.snapTolerance", 1e-4)

	viper.SetDefault("osrm.enabled", true)
	viper.SetDefault("osrm.baseUrl", "https://router.project-osrm.org")
	viper.SetDefault("osrm.timeout", "30s")

	viper.SetDefault("seed.dir", "./data/seeds")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tripcast-metrics")
	viper.SetDefault("influx.bucket", "replay_metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("monitor.interval", "30s")

	viper.SetConfigName("tripcast.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetStorageConfig returns the trip store settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:       viper.GetString("storage.type"),
		SqlitePath: viper.GetString("storage.sqlitePath"),
	}
}

// GetReplayConfig returns the playback engine settings.
func GetReplayConfig() ReplayConfig {
	return ReplayConfig{
		Interval:      viper.GetDuration("replay.interval"),
		SnapTolerance: viper.GetFloat64("replay.snapTolerance"),
	}
}

// GetOSRMConfig returns the road-snapping service settings.
func GetOSRMConfig() OSRMConfig {
	return OSRMConfig{
		BaseURL: viper.GetString("osrm.baseUrl"),
		Timeout: viper.GetDuration("osrm.timeout"),
		Enabled: viper.GetBool("osrm.enabled"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
