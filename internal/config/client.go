package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends for the client's saved session
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// ClientConfig holds the CLI configuration
type ClientConfig struct {
	APIURL    string        `yaml:"api_url"`
	Store     string        `yaml:"store"`
	StateFile string        `yaml:"state_file"`
	RedisURL  string        `yaml:"redis_url"`
	Timeout   time.Duration `yaml:"-"`

	// TimeoutText is the raw timeout from the config file
	TimeoutText string `yaml:"timeout"`
}

// DefaultClientConfigPath returns ~/.careerontrack/config.yaml
func DefaultClientConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".careerontrack", "config.yaml"), nil
}

// LoadClient reads the optional YAML file at path and applies environment
// overrides on top. An empty path means the default location; a missing
// file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		p, err := DefaultClientConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return loadClient(path, osLookup)
}

func loadClient(path string, lookup Lookup) (*ClientConfig, error) {
	cfg := &ClientConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.APIURL = getEnv(lookup, "CAREERONTRACK_API_URL", defaultString(cfg.APIURL, "http://localhost:3000"))
	cfg.Store = strings.ToLower(getEnv(lookup, "CAREERONTRACK_STORE", defaultString(cfg.Store, StoreFile)))
	cfg.StateFile = getEnv(lookup, "CAREERONTRACK_STATE_FILE", cfg.StateFile)
	cfg.RedisURL = getEnv(lookup, "CAREERONTRACK_REDIS_URL", defaultString(cfg.RedisURL, "redis://localhost:6379/0"))

	fileTimeout := 15 * time.Second
	if cfg.TimeoutText != "" {
		d, err := time.ParseDuration(cfg.TimeoutText)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("timeout in %s must be a positive duration such as 15s", path)
		}
		fileTimeout = d
	}
	cfg.Timeout, err = getEnvDuration(lookup, "CAREERONTRACK_TIMEOUT", fileTimeout)
	if err != nil {
		return nil, err
	}

	switch cfg.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid store %q (must be 'file', 'redis', or 'memory')", cfg.Store)
	}
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return nil, fmt.Errorf("api url must start with http:// or https://, got %q", cfg.APIURL)
	}

	return cfg, nil
}

func defaultString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
