package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server (one-shot default)
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type SafetyCfg struct {
	AllowedRoots   []string `yaml:"allowed_roots" json:"allowed_roots"`     // Optional; empty = anywhere not protected
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"` // Extra subtrees removals may never touch
}

type Config struct {
	ManifestPath  string        `yaml:"manifest_path" json:"manifest_path"`
	DestDir       string        `yaml:"dest_dir" json:"dest_dir"`             // Prefix joined to every manifest path (staged uninstalls)
	IgnoreMissing *bool         `yaml:"ignore_missing" json:"ignore_missing"` // Already-absent file counts as removed (default true)
	DatabasePath  string        `yaml:"database_path" json:"database_path"`   // SQLite removal history, empty disables
	Prometheus    PrometheusCfg `yaml:"prometheus" json:"prometheus"`
	Logging       LoggingCfg    `yaml:"logging" json:"logging"`
	Safety        SafetyCfg     `yaml:"safety" json:"safety"`
}

var (
	errRelativeManifest = errors.New("manifest_path must be absolute")
	errRelativeDestDir  = errors.New("dest_dir must be absolute")
)

// Default returns the configuration used when no config file is given.
// Flags still override individual fields.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.ManifestPath != "" {
		cp := filepath.Clean(c.ManifestPath)
		if !filepath.IsAbs(cp) {
			return fmt.Errorf("%w: %s", errRelativeManifest, c.ManifestPath)
		}
		c.ManifestPath = cp
	}

	if c.DestDir != "" {
		cp := filepath.Clean(c.DestDir)
		if !filepath.IsAbs(cp) {
			return fmt.Errorf("%w: %s", errRelativeDestDir, c.DestDir)
		}
		c.DestDir = cp
	}

	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	// Missing-file policy defaults to rm -f semantics: a second run after
	// a successful uninstall succeeds trivially
	if c.IgnoreMissing == nil {
		t := true
		c.IgnoreMissing = &t
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}

	// Prometheus.Port stays 0 unless configured: a one-shot uninstall has
	// no long-lived process to scrape
}

// IgnoreMissingFiles reports the effective missing-file policy
func (c *Config) IgnoreMissingFiles() bool {
	return c.IgnoreMissing == nil || *c.IgnoreMissing
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
