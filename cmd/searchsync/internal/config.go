package internal

import (
	"fmt"
	"os"

	"github.com/DreamCats/searchsync/internal/config"
)

// LoadConfig reads the YAML configuration from an explicit path or the
// default location.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample prints a complete YAML configuration example to stderr.
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.searchsync/config/searchsync.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

database:
  driver: postgres              # "postgres" or "sqlite"
  host: localhost
  port: 5432
  user: searchsync
  password: your-password
  name: marketplace
  ssl_mode: disable

search:
  endpoint: http://localhost:9200
  ef_construction: 512          # HNSW graph construction effort
  m: 16                         # HNSW graph connectivity

embedding:
  endpoint: http://localhost:8001
  item_profile: food            # 768-dim profile for item documents
  general_profile: general      # 384-dim profile for store/category documents
  batch_size: 50
  normalize: true

sync:
  lookback_minutes: 10          # must exceed interval + worst-case run time
  continuous: false
  interval_minutes: 5
  destructive_recreate: false
`, configPath)
}
