package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines client configuration.
type Config struct {
	API APIConfig `yaml:"api"`
	DB  DBConfig  `yaml:"db"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
	}

	if path := os.Getenv("TASKMAN_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if url := os.Getenv("TASKMAN_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if timeoutStr := os.Getenv("TASKMAN_HTTP_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TASKMAN_HTTP_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = timeout
	}
	if dbPath := os.Getenv("TASKMAN_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
