package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/releasekit/releasekit/domain"
)

// Config is the top-level configuration for releasekit.
type Config struct {
	RepoDir   string          `yaml:"repo_dir"` // repository root, defaults to "."
	Packages  []PackageConfig `yaml:"packages"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// PackageConfig describes one managed package inside the repository.
type PackageConfig struct {
	Dir       string `yaml:"dir"`       // package directory, relative to repo_dir
	Manifest  string `yaml:"manifest"`  // defaults to "package.json"
	Changelog string `yaml:"changelog"` // defaults to "CHANGELOG.md"
}

// ReconcileConfig tunes the dependency reconciliation step.
type ReconcileConfig struct {
	// Filters lists dependency-name prefixes eligible for reconciliation.
	// Empty means every dependency is eligible.
	Filters []string `yaml:"filters"`

	// Protected lists dependency names whose original range is always
	// restored, regardless of which side is newer.
	Protected []string `yaml:"protected"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	if cfg.RepoDir == "" {
		cfg.RepoDir = "."
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".releasekit.yaml",
		".releasekit.yml",
		"releasekit.yaml",
		"releasekit.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// DomainPackages converts the configured packages into domain entities.
func (c *Config) DomainPackages() []domain.Package {
	packages := make([]domain.Package, 0, len(c.Packages))
	for _, p := range c.Packages {
		packages = append(packages, domain.Package{
			Dir:       p.Dir,
			Manifest:  p.Manifest,
			Changelog: p.Changelog,
		})
	}
	return packages
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if len(cfg.Packages) == 0 {
		return errors.New("at least one package must be configured")
	}

	for i, p := range cfg.Packages {
		if p.Dir == "" {
			return fmt.Errorf("packages[%d].dir is required", i)
		}
	}

	return nil
}
