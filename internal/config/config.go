package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vindinium-archive/recorder/pkg/core"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "arena_recorder.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. ARENA_DB_PASSWORD for db.password.
const EnvPrefix = "ARENA"

// PostgresConfig holds connection settings for the primary store
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// SQLiteConfig holds settings for the local store.
// An empty Path selects an in-memory database that is dumped to DumpPath.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

// FeedConfig points at the game server
type FeedConfig struct {
	Host           string
	ConnectTimeout time.Duration
}

// MonitorConfig configures the periodic status monitor
type MonitorConfig struct {
	Interval time.Duration
}

// Load sets default values and reads configuration from the JSON file, a .env
// file and ARENA_ prefixed environment variables. Both files are optional.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./arenalogs")

	viper.SetDefault("feed.host", "http://vindinium.org")
	viper.SetDefault("feed.connectTimeout", "10s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "")
	viper.SetDefault("db.database", "vindinium")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("storage.type", "postgres")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./arena_recorder.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "vindinium")
	viper.SetDefault("influx.backupPath", "./arena_metrics.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("deaths.healthJump", core.DefaultDeathThresholds.HealthJump)
	viper.SetDefault("deaths.maxStep", core.DefaultDeathThresholds.MaxStep)

	viper.SetDefault("monitor.interval", "1m")

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
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

// Set overrides a config value, used for command line arguments.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetFeedConfig returns the game server settings.
func GetFeedConfig() FeedConfig {
	return FeedConfig{
		Host:           viper.GetString("feed.host"),
		ConnectTimeout: viper.GetDuration("feed.connectTimeout"),
	}
}

// GetDeathThresholds returns the death detection thresholds.
func GetDeathThresholds() core.DeathThresholds {
	return core.DeathThresholds{
		HealthJump: viper.GetInt("deaths.healthJump"),
		MaxStep:    viper.GetInt("deaths.maxStep"),
	}
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval: viper.GetDuration("monitor.interval"),
	}
}
