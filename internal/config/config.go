package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the workspace configuration file.
const FileName = "cardledger.yaml"

// Config represents the top-level cardledger.yaml configuration.
type Config struct {
	Ledger     LedgerConfig     `yaml:"ledger"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Git        GitConfig        `yaml:"git"`
}

// LedgerConfig identifies the ledger and the calendar it runs on.
type LedgerConfig struct {
	Name           string `yaml:"name"`
	Timezone       string `yaml:"timezone"`        // IANA name, e.g. "America/Sao_Paulo"
	DefaultContext string `yaml:"default_context"` // PF or PJ
}

// RecurrenceConfig sets how many instances a recurring template expands to.
type RecurrenceConfig struct {
	BoundedCount  int `yaml:"bounded_count"`
	InfiniteCount int `yaml:"infinite_count"`
}

// StorageConfig locates the snapshot files, relative to the workspace root.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a cardledger.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string) *Config {
	return &Config{
		Ledger: LedgerConfig{
			Name:           name,
			Timezone:       "Local",
			DefaultContext: "PF",
		},
		Recurrence: RecurrenceConfig{
			BoundedCount:  12,
			InfiniteCount: 24,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "cardledger",
			AuthorEmail: "cardledger@localhost",
		},
	}
}

// Validate checks the fields that the workspace cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Ledger.Name == "" {
		errs = append(errs, errors.New("ledger.name is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.Ledger.DefaultContext {
	case "", "PF", "PJ":
	default:
		errs = append(errs, fmt.Errorf("ledger.default_context %q must be PF or PJ", c.Ledger.DefaultContext))
	}
	if c.Recurrence.BoundedCount < 0 || c.Recurrence.InfiniteCount < 0 {
		errs = append(errs, errors.New("recurrence counts must not be negative"))
	}
	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data_dir is required"))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		errs = append(errs, errors.New("git.author_name and git.author_email are required with auto_commit"))
	}
	return errors.Join(errs...)
}

// Location resolves Ledger.Timezone. Empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Ledger.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ledger.timezone: %w", err)
	}
	return loc, nil
}
