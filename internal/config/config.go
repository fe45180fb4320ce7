// Package config loads tool configuration: built-in defaults, overridden by
// the YAML config file, overridden by AUTONOVEL_* environment variables.
// Command-line flags override all of these at the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file/env configurable surface.
type Config struct {
	// CatalogURL is the base URL of the novel catalog service.
	CatalogURL string `yaml:"catalog_url"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// HistoryPath locates the job history database.
	HistoryPath string `yaml:"history_path"`

	GPT    GPTConfig    `yaml:"gpt"`
	Sakura SakuraConfig `yaml:"sakura"`
}

type GPTConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type SakuraConfig struct {
	Endpoint string `yaml:"endpoint"`
}

const DefaultCatalogURL = "https://books.fishhawk.top"

func defaults() Config {
	return Config{
		CatalogURL:  DefaultCatalogURL,
		LogLevel:    "info",
		HistoryPath: "", // resolved lazily against the config dir
	}
}

// Dir returns the configuration directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "auto-novel"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file if present and applies environment overrides.
// A missing file is not an error; defaults apply.
func Load() (Config, error) {
	cfg := defaults()

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.HistoryPath == "" {
		dir, err := Dir()
		if err != nil {
			return cfg, err
		}
		cfg.HistoryPath = filepath.Join(dir, "history.db")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_CATALOG_URL")); v != "" {
		cfg.CatalogURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_HISTORY_PATH")); v != "" {
		cfg.HistoryPath = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_GPT_ENDPOINT")); v != "" {
		cfg.GPT.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_GPT_MODEL")); v != "" {
		cfg.GPT.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTONOVEL_SAKURA_ENDPOINT")); v != "" {
		cfg.Sakura.Endpoint = v
	}
}
