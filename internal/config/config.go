// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Snapshot backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config is the full configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Schedule  ScheduleConfig
	MongoDB   MongoDBConfig
	LogFile   string
	AdminUser string
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Addr string
}

// StorageConfig selects where the database and snapshots live.
type StorageConfig struct {
	DBPath          string
	SnapshotBackend string
	SnapshotFile    string
}

// ScheduleConfig holds the cron specs of periodic jobs.
type ScheduleConfig struct {
	AutosaveCron      string
	LowStockCron      string
	LowStockThreshold int
}

// MongoDBConfig holds MongoDB connection settings.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads envFile (or .env when empty) if present, then builds a Config
// from the environment. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	threshold, err := getenvInt("EVENTSTOCK_LOW_STOCK_THRESHOLD", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr: getenvWithDefault("EVENTSTOCK_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			DBPath:          getenvWithDefault("EVENTSTOCK_DB", "eventstock.sqlite3"),
			SnapshotBackend: getenvWithDefault("EVENTSTOCK_SNAPSHOT_BACKEND", BackendFile),
			SnapshotFile:    getenvWithDefault("EVENTSTOCK_SNAPSHOT_FILE", "stock_data.json"),
		},
		Schedule: ScheduleConfig{
			AutosaveCron:      getenvWithDefault("EVENTSTOCK_AUTOSAVE_CRON", "*/5 * * * *"),
			LowStockCron:      getenvWithDefault("EVENTSTOCK_LOW_STOCK_CRON", "0 8 * * *"),
			LowStockThreshold: threshold,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "eventstock"),
		},
		LogFile:   os.Getenv("EVENTSTOCK_LOG_FILE"),
		AdminUser: getenvWithDefault("EVENTSTOCK_ADMIN_USER", "Admin"),
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Addr == "" {
		return errors.New("EVENTSTOCK_ADDR must be provided")
	}
	if c.Storage.DBPath == "" {
		return errors.New("EVENTSTOCK_DB must be provided")
	}

	switch c.Storage.SnapshotBackend {
	case BackendFile:
		if c.Storage.SnapshotFile == "" {
			return errors.New("EVENTSTOCK_SNAPSHOT_FILE must be provided for the file backend")
		}
	case BackendSQLite:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo backend")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Storage.SnapshotBackend)
	}

	if c.Schedule.LowStockThreshold <= 0 {
		return fmt.Errorf("low stock threshold must be positive, got %d", c.Schedule.LowStockThreshold)
	}
	if c.AdminUser == "" {
		return errors.New("EVENTSTOCK_ADMIN_USER must be provided")
	}
	return nil
}

func getenvWithDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
