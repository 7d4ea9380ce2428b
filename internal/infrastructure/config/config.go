// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for catalog configuration.
	DefaultConfigDir = ".catalog"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Catalog CatalogConfig `yaml:"catalog,omitempty"`
	SQLite  SQLiteConfig  `yaml:"sqlite,omitempty"`
	Reports ReportsConfig `yaml:"reports,omitempty"`
	HTTP    HTTPConfig    `yaml:"http,omitempty"`
}

// CatalogConfig holds the data-layout settings of the catalog.
type CatalogConfig struct {
	// DataRoot is the root of the raw-data directory tree.
	DataRoot string `yaml:"data_root,omitempty"`
	// ManualFile is the manual-overrides JSON file, relative to the config
	// directory unless absolute.
	ManualFile string `yaml:"manual_file,omitempty"`
	// ManifestFile is the layer processing-manifest JSON file, relative to
	// the config directory unless absolute.
	ManifestFile string `yaml:"manifest_file,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite catalog database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty"`
}

// ReportsConfig holds report output settings.
type ReportsConfig struct {
	// Dir is the report output directory, relative to the config directory
	// unless absolute.
	Dir string `yaml:"dir,omitempty"`
}

// HTTPConfig holds settings for source URL health probes.
type HTTPConfig struct {
	// TimeoutSeconds bounds each probe request.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	// RetryCount is the number of probe retries on transient failure.
	RetryCount int `yaml:"retry_count,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DataRoot:     "/srv/datascrub",
			ManualFile:   "missing_fields.json",
			ManifestFile: "layer_manifest.json",
		},
		Reports: ReportsConfig{
			Dir: "reports",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 15,
			RetryCount:     2,
		},
	}
}

// Load loads configuration from the .catalog directory in the given path.
// A missing config file yields the defaults.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	configFile := ConfigFilePath(basePath)
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		cfg.resolvePaths(basePath)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.resolvePaths(basePath)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CATALOG_DB"); path != "" {
		c.SQLite.Path = path
	}
	if root := os.Getenv("CATALOG_DATA_ROOT"); root != "" {
		c.Catalog.DataRoot = root
	}
}

// resolvePaths anchors relative file settings under the config directory.
func (c *Config) resolvePaths(basePath string) {
	dir := ConfigDir(basePath)
	if c.SQLite.Path == "" {
		c.SQLite.Path = filepath.Join(dir, "catalog.db")
	}
	if !filepath.IsAbs(c.Catalog.ManualFile) {
		c.Catalog.ManualFile = filepath.Join(dir, c.Catalog.ManualFile)
	}
	if !filepath.IsAbs(c.Catalog.ManifestFile) {
		c.Catalog.ManifestFile = filepath.Join(dir, c.Catalog.ManifestFile)
	}
	if !filepath.IsAbs(c.Reports.Dir) {
		c.Reports.Dir = filepath.Join(dir, c.Reports.Dir)
	}
}

// ConfigDir returns the path to the .catalog config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a catalog config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
