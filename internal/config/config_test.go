package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "searchsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
database:
  driver: postgres
  user: searchsync
  name: marketplace
search:
  endpoint: http://localhost:9200
`

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("database defaults = %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Embedding.ItemProfile != "food" || cfg.Embedding.GeneralProfile != "general" {
		t.Errorf("profiles = %s/%s", cfg.Embedding.ItemProfile, cfg.Embedding.GeneralProfile)
	}
	if cfg.Embedding.BatchSize != 50 {
		t.Errorf("batch size = %d, want 50", cfg.Embedding.BatchSize)
	}
	if cfg.Sync.LookbackMinutes != 10 || cfg.Sync.IntervalMinutes != 5 {
		t.Errorf("sync defaults = %d/%d", cfg.Sync.LookbackMinutes, cfg.Sync.IntervalMinutes)
	}
	if cfg.Search.EfConstruction != 512 || cfg.Search.M != 16 {
		t.Errorf("hnsw defaults = %d/%d", cfg.Search.EfConstruction, cfg.Search.M)
	}
	if !cfg.EmbeddingEnabled() {
		t.Error("embedding should default to enabled")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !IsConfigNotFound(err) {
		t.Fatalf("err = %v, want ConfigNotFoundError", err)
	}
}

func TestLoadFromFileEnvOverrides(t *testing.T) {
	t.Setenv("SEARCHSYNC_DB_HOST", "db.internal")
	t.Setenv("SEARCHSYNC_DB_PORT", "5433")
	t.Setenv("SEARCHSYNC_SEARCH_ENDPOINT", "http://search.internal:9200")
	t.Setenv("SEARCHSYNC_LOOKBACK_MINUTES", "30")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("database = %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Search.Endpoint != "http://search.internal:9200" {
		t.Errorf("search endpoint = %s", cfg.Search.Endpoint)
	}
	if cfg.Sync.LookbackMinutes != 30 {
		t.Errorf("lookback = %d, want 30", cfg.Sync.LookbackMinutes)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Database.Driver = "postgres"
		cfg.Database.User = "searchsync"
		cfg.Database.Name = "marketplace"
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "postgres without name",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: "database.name",
		},
		{
			name:    "postgres without user",
			mutate:  func(c *Config) { c.Database.User = "" },
			wantErr: "database.user",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: "database.path",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "batch size too large",
			mutate:  func(c *Config) { c.Embedding.BatchSize = 1000 },
			wantErr: "batch_size",
		},
		{
			name:    "negative lookback",
			mutate:  func(c *Config) { c.Sync.LookbackMinutes = -1 },
			wantErr: "lookback_minutes",
		},
		{
			name: "continuous with lookback not exceeding interval",
			mutate: func(c *Config) {
				c.Sync.Continuous = true
				c.Sync.LookbackMinutes = 5
				c.Sync.IntervalMinutes = 5
			},
			wantErr: "must exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "localhost", Port: 5432,
				User: "searchsync", Name: "marketplace", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=searchsync dbname=marketplace sslmode=disable",
		},
		{
			name: "postgres with password",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "localhost", Port: 5432,
				User: "searchsync", Password: "secret", Name: "marketplace", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=searchsync dbname=marketplace sslmode=disable password=secret",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "/tmp/source.db"},
			want: "/tmp/source.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteDefaultTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "searchsync.yaml")

	created, err := WriteDefaultTemplate(path)
	if err != nil {
		t.Fatalf("WriteDefaultTemplate: %v", err)
	}
	if !created {
		t.Fatal("expected template to be created")
	}

	created, err = WriteDefaultTemplate(path)
	if err != nil {
		t.Fatalf("WriteDefaultTemplate second run: %v", err)
	}
	if created {
		t.Error("second run must not overwrite")
	}

	// The template must itself be loadable.
	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("template does not load: %v", err)
	}
}

func TestEmbeddingEnabled(t *testing.T) {
	off := false
	cfg := &Config{}
	if !cfg.EmbeddingEnabled() {
		t.Error("unset should mean enabled")
	}
	cfg.Embedding.Enabled = &off
	if cfg.EmbeddingEnabled() {
		t.Error("explicit false should disable")
	}
}
