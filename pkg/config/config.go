package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
)

// ProviderOptions holds the bank-data provider credentials
type ProviderOptions struct {
	SecretId  string `yaml:"secretId"`
	SecretKey string `yaml:"secretKey"`
	BaseURL   string `yaml:"baseUrl"`
	// DebugHTTP dumps provider requests and responses to the log
	DebugHTTP bool `yaml:"debugHttp"`
}

// QuotaOptions controls the local per-day call budget
type QuotaOptions struct {
	// LimitPerDay is the per-account per-scope daily call cap; 4 on the
	// provider's free tier, 10 on paid tiers
	LimitPerDay int `yaml:"limitPerDay"`
}

// ServerOptions holds HTTP server settings
type ServerOptions struct {
	ListenAddr string `yaml:"listenAddr"`
}

// Config holds the application configuration
type Config struct {
	Provider     ProviderOptions `yaml:"provider"`
	Quota        QuotaOptions    `yaml:"quota"`
	Server       ServerOptions   `yaml:"server"`
	DatabasePath string          `yaml:"databasePath"`
}

var (
	// Global configuration instance
	globalConfig *Config
	// Mutex to ensure thread-safe access to the global configuration
	configMutex sync.RWMutex
	// Flag to track if the configuration has been loaded
	configLoaded bool
)

// LoadConfig loads the configuration from the specified YAML file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

// InitGlobalConfig initializes the global configuration from the specified file
func InitGlobalConfig(configPath string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = config
	configLoaded = true
	return nil
}

// GetConfig returns the global configuration instance
// If the configuration hasn't been loaded yet, it attempts to load it from
// the default location (./config.yaml)
func GetConfig() (*Config, error) {
	configMutex.RLock()
	if configLoaded {
		defer configMutex.RUnlock()
		return globalConfig, nil
	}
	configMutex.RUnlock()

	// Try to load from default location
	configPath := "config.yaml"
	if err := InitGlobalConfig(configPath); err != nil {
		// If the default config file doesn't exist, create it
		if os.IsNotExist(err) {
			dir := filepath.Dir(configPath)
			if dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("error creating config directory: %w", err)
				}
			}

			defaultConfig := &Config{
				Quota:  QuotaOptions{LimitPerDay: 4},
				Server: ServerOptions{ListenAddr: ":8080"},
			}

			data, err := yaml.Marshal(defaultConfig)
			if err != nil {
				return nil, fmt.Errorf("error creating default config: %w", err)
			}

			if err := os.WriteFile(configPath, data, 0644); err != nil {
				return nil, fmt.Errorf("error writing default config: %w", err)
			}

			configMutex.Lock()
			globalConfig = defaultConfig
			configLoaded = true
			configMutex.Unlock()

			return defaultConfig, nil
		}
		return nil, err
	}

	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig, nil
}

// GetProviderCredentials returns the provider secret id and key
func GetProviderCredentials() (string, string, error) {
	config, err := GetConfig()
	if err != nil {
		return "", "", err
	}

	if config.Provider.SecretId == "" || config.Provider.SecretKey == "" {
		return "", "", fmt.Errorf("error: provider credentials not set in configuration")
	}

	return config.Provider.SecretId, config.Provider.SecretKey, nil
}

// GetQuotaLimit returns the configured per-day call limit
func GetQuotaLimit() int {
	config, err := GetConfig()
	if err != nil || config.Quota.LimitPerDay <= 0 {
		return 4
	}
	return config.Quota.LimitPerDay
}

// GetListenAddr returns the HTTP server listen address
func GetListenAddr() string {
	config, err := GetConfig()
	if err != nil || config.Server.ListenAddr == "" {
		return ":8080"
	}
	return config.Server.ListenAddr
}

// GetDatabasePath returns the configured database path, if any
func GetDatabasePath() string {
	config, err := GetConfig()
	if err != nil {
		return ""
	}
	return config.DatabasePath
}
