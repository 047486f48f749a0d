package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file does not set a value.
const (
	DefaultLocale    = "en"
	DefaultStoreType = "sqlite"
	DefaultStoreFile = "vulnerabilities.db"
)

type StoreConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

type Config struct {
	Locale          string      `yaml:"locale"`
	Store           StoreConfig `yaml:"store"`
	CategoriesFile  string      `yaml:"categories_file,omitempty"`
	MetricsTextfile string      `yaml:"metrics_textfile,omitempty"`
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".vulnimport")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return configDir, nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Locale: DefaultLocale,
		Store: StoreConfig{
			Type: DefaultStoreType,
			DSN:  filepath.Join(dir, DefaultStoreFile),
		},
	}, nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file, filling unset keys with defaults.
func LoadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.merge(fileCfg)
	return cfg, nil
}

func (c *Config) merge(other Config) {
	if other.Locale != "" {
		c.Locale = other.Locale
	}
	if other.Store.Type != "" {
		c.Store.Type = other.Store.Type
		// A DSN from the defaults belongs to the default backend only.
		c.Store.DSN = ""
	}
	if other.Store.DSN != "" {
		c.Store.DSN = other.Store.DSN
	}
	if other.CategoriesFile != "" {
		c.CategoriesFile = other.CategoriesFile
	}
	if other.MetricsTextfile != "" {
		c.MetricsTextfile = other.MetricsTextfile
	}
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile writes cfg to path.
func SaveFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600: the store DSN may carry database credentials
	return os.WriteFile(path, data, 0600)
}
