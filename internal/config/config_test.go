package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EVENTSTOCK_ADDR", "EVENTSTOCK_DB", "EVENTSTOCK_SNAPSHOT_BACKEND",
		"EVENTSTOCK_SNAPSHOT_FILE", "EVENTSTOCK_AUTOSAVE_CRON", "EVENTSTOCK_LOW_STOCK_CRON",
		"EVENTSTOCK_LOW_STOCK_THRESHOLD", "EVENTSTOCK_LOG_FILE", "EVENTSTOCK_ADMIN_USER",
		"MONGODB_URI", "MONGODB_DB_NAME",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.SnapshotBackend != BackendFile || cfg.Storage.SnapshotFile != "stock_data.json" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Schedule.LowStockThreshold != 10 {
		t.Errorf("expected threshold 10, got %d", cfg.Schedule.LowStockThreshold)
	}
	if cfg.AdminUser != "Admin" {
		t.Errorf("expected admin user 'Admin', got %q", cfg.AdminUser)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "EVENTSTOCK_ADDR=127.0.0.1:9000\nEVENTSTOCK_SNAPSHOT_BACKEND=sqlite\nEVENTSTOCK_LOW_STOCK_THRESHOLD=3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr from env file, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.SnapshotBackend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.SnapshotBackend)
	}
	if cfg.Schedule.LowStockThreshold != 3 {
		t.Errorf("expected threshold 3, got %d", cfg.Schedule.LowStockThreshold)
	}
}

func TestLoad_BadThreshold(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENTSTOCK_LOW_STOCK_THRESHOLD", "many")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for non-numeric threshold")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Addr: ":8080"},
			Storage:   StorageConfig{DBPath: "x.sqlite3", SnapshotBackend: BackendFile, SnapshotFile: "s.json"},
			Schedule:  ScheduleConfig{LowStockThreshold: 10},
			MongoDB:   MongoDBConfig{DBName: "eventstock"},
			AdminUser: "Admin",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"sqlite backend", func(c *Config) { c.Storage.SnapshotBackend = BackendSQLite }, false},
		{"unknown backend", func(c *Config) { c.Storage.SnapshotBackend = "s3" }, true},
		{"mongo without uri", func(c *Config) { c.Storage.SnapshotBackend = BackendMongo }, true},
		{"mongo with uri", func(c *Config) {
			c.Storage.SnapshotBackend = BackendMongo
			c.MongoDB.URI = "mongodb://localhost:27017"
		}, false},
		{"zero threshold", func(c *Config) { c.Schedule.LowStockThreshold = 0 }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var nilCfg *Config
	if err := nilCfg.Validate(); err == nil {
		t.Error("expected error for nil config")
	}
}
