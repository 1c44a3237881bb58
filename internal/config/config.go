package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file expected at the ledger root.
const FileName = "cashbook.yaml"

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config represents the top-level cashbook.yaml configuration.
type Config struct {
	Business   BusinessConfig   `yaml:"business"`
	Store      StoreConfig      `yaml:"store"`
	Limits     LimitsConfig     `yaml:"limits"`
	Validation ValidationConfig `yaml:"validation"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Git        GitConfig        `yaml:"git"`
}

// BusinessConfig identifies the business the ledger belongs to.
type BusinessConfig struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StoreConfig selects where ledger snapshots come from. The Postgres DSN is
// read from the environment variable named by DSNEnv.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSNEnv string `yaml:"dsn_env,omitempty"`
}

// LimitsConfig caps how many transactions one computation may scan.
type LimitsConfig struct {
	MaxRows int `yaml:"max_rows"`
}

// ValidationConfig tunes the transaction integrity checks.
type ValidationConfig struct {
	StaleAfterDays    int    `yaml:"stale_after_days"`
	MismatchTolerance string `yaml:"mismatch_tolerance"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a cashbook.yaml file from disk.
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
		return nil, err
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

// Default returns a Config with sensible defaults for a new ledger.
func Default(businessName, currency string) *Config {
	return &Config{
		Business: BusinessConfig{
			ID:       1,
			Name:     businessName,
			Currency: currency,
		},
		Store: StoreConfig{
			Driver: DriverFile,
			DSNEnv: "DATABASE_URL",
		},
		Limits: LimitsConfig{
			MaxRows: 100000,
		},
		Validation: ValidationConfig{
			StaleAfterDays:    30,
			MismatchTolerance: "0.01",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Cashbook",
			AuthorEmail: "cashbook@localhost",
		},
	}
}

// Validate rejects values the engines cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Business.ID <= 0 {
		errs = append(errs, fmt.Errorf("business.id must be positive"))
	}
	switch c.Store.Driver {
	case DriverFile, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q must be %s or %s", c.Store.Driver, DriverFile, DriverPostgres))
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSNEnv == "" {
		errs = append(errs, fmt.Errorf("store.dsn_env is required for the postgres driver"))
	}
	if c.Limits.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("limits.max_rows must not be negative"))
	}
	if c.Validation.StaleAfterDays < 0 {
		errs = append(errs, fmt.Errorf("validation.stale_after_days must not be negative"))
	}
	if c.Validation.MismatchTolerance != "" {
		if _, err := c.Tolerance(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tolerance parses validation.mismatch_tolerance, defaulting to one cent.
func (c *Config) Tolerance() (decimal.Decimal, error) {
	if c.Validation.MismatchTolerance == "" {
		return decimal.New(1, -2), nil
	}
	d, err := decimal.NewFromString(c.Validation.MismatchTolerance)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("validation.mismatch_tolerance %q: %w", c.Validation.MismatchTolerance, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("validation.mismatch_tolerance must not be negative")
	}
	return d, nil
}
