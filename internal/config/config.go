package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sync      SyncConfig      `yaml:"sync"`
}

// DatabaseConfig holds relational source configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" | "sqlite"
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Name     string `yaml:"name,omitempty"`
	SSLMode  string `yaml:"ssl_mode,omitempty"`

	// SQLite specific (local development and tests)
	Path string `yaml:"path,omitempty"`
}

// SearchConfig holds search engine configuration
type SearchConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	IndexPrefix string `yaml:"index_prefix,omitempty"`

	// HNSW parameters fixed at index creation time
	EfConstruction int `yaml:"ef_construction,omitempty"`
	M              int `yaml:"m,omitempty"`
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint"`

	// Profile names as reported by the service's health endpoint
	ItemProfile    string `yaml:"item_profile,omitempty"`    // default "food"
	GeneralProfile string `yaml:"general_profile,omitempty"` // default "general"

	BatchSize int  `yaml:"batch_size,omitempty"`
	Normalize bool `yaml:"normalize,omitempty"`
	TimeoutS  int  `yaml:"timeout_seconds,omitempty"`
}

// SyncConfig holds sync pipeline configuration
type SyncConfig struct {
	LookbackMinutes     int  `yaml:"lookback_minutes,omitempty"`
	Continuous          bool `yaml:"continuous,omitempty"`
	IntervalMinutes     int  `yaml:"interval_minutes,omitempty"`
	DestructiveRecreate bool `yaml:"destructive_recreate,omitempty"`
}

// EmbeddingEnabled reports whether vector enrichment is on (default true).
func (c *Config) EmbeddingEnabled() bool {
	if c.Embedding.Enabled == nil {
		return true
	}
	return *c.Embedding.Enabled
}

// DSN builds the database/sql data source name for the configured driver.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	parts := []string{
		"host=" + d.Host,
		"port=" + strconv.Itoa(d.Port),
		"user=" + d.User,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}

// Load loads configuration from the default config file
// Default location: ~/.searchsync/config/searchsync.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".searchsync", "config", "searchsync.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".searchsync", "config", "searchsync.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// applyEnvOverrides lets deployment environments override host and credential
// settings without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SEARCHSYNC_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("SEARCHSYNC_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("SEARCHSYNC_DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("SEARCHSYNC_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("SEARCHSYNC_DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("SEARCHSYNC_SEARCH_ENDPOINT"); v != "" {
		c.Search.Endpoint = v
	}
	if v := os.Getenv("SEARCHSYNC_EMBEDDING_ENDPOINT"); v != "" {
		c.Embedding.Endpoint = v
	}
	if v := os.Getenv("SEARCHSYNC_LOOKBACK_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sync.LookbackMinutes = n
		}
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Search.Endpoint == "" {
		c.Search.Endpoint = "http://localhost:9200"
	}
	if c.Search.EfConstruction == 0 {
		c.Search.EfConstruction = 512
	}
	if c.Search.M == 0 {
		c.Search.M = 16
	}

	if c.Embedding.Endpoint == "" {
		c.Embedding.Endpoint = "http://localhost:8001"
	}
	if c.Embedding.ItemProfile == "" {
		c.Embedding.ItemProfile = "food"
	}
	if c.Embedding.GeneralProfile == "" {
		c.Embedding.GeneralProfile = "general"
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 50
	}
	if c.Embedding.TimeoutS == 0 {
		c.Embedding.TimeoutS = 30
	}

	if c.Sync.LookbackMinutes == 0 {
		c.Sync.LookbackMinutes = 10
	}
	if c.Sync.IntervalMinutes == 0 {
		c.Sync.IntervalMinutes = 5
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Name == "" {
			return fmt.Errorf("postgres driver requires database.name")
		}
		if c.Database.User == "" {
			return fmt.Errorf("postgres driver requires database.user")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite driver requires database.path")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 500 {
		return fmt.Errorf("embedding batch_size must be between 1 and 500, got: %d", c.Embedding.BatchSize)
	}
	if c.Sync.LookbackMinutes <= 0 {
		return fmt.Errorf("lookback_minutes must be positive, got: %d", c.Sync.LookbackMinutes)
	}
	if c.Sync.IntervalMinutes <= 0 {
		return fmt.Errorf("interval_minutes must be positive, got: %d", c.Sync.IntervalMinutes)
	}
	// Rows mutated between passes are missed entirely when the lookback
	// window is shorter than the run cadence.
	if c.Sync.Continuous && c.Sync.LookbackMinutes <= c.Sync.IntervalMinutes {
		return fmt.Errorf("lookback_minutes (%d) must exceed interval_minutes (%d) to avoid missed rows",
			c.Sync.LookbackMinutes, c.Sync.IntervalMinutes)
	}

	return nil
}

const defaultConfigTemplate = `# searchsync configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.searchsync/config/searchsync.yaml

database:
  driver: postgres
  host: localhost
  port: 5432
  user: searchsync
  password: your-password
  name: marketplace
  ssl_mode: disable

search:
  endpoint: http://localhost:9200
  index_prefix: ""
  ef_construction: 512
  m: 16

embedding:
  endpoint: http://localhost:8001
  item_profile: food
  general_profile: general
  batch_size: 50
  normalize: true
  timeout_seconds: 30

sync:
  lookback_minutes: 10
  continuous: false
  interval_minutes: 5
  destructive_recreate: false
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
