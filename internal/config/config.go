package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "contflow.yaml"

// Environment variables that override file values.
const (
	EnvDBDriver      = "CONTFLOW_DB_DRIVER"
	EnvDBDSN         = "CONTFLOW_DB_DSN"
	EnvLogLevel      = "CONTFLOW_LOG_LEVEL"
	EnvWatchSchedule = "CONTFLOW_WATCH_SCHEDULE"
)

// Config represents the top-level contflow.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the business.
type BusinessConfig struct {
	Name string `yaml:"name"`
	CNPJ string `yaml:"cnpj,omitempty"`
}

// TaxonomyConfig locates the chart of accounts.
type TaxonomyConfig struct {
	Path string `yaml:"path"` // relative to the workspace root
}

// DatabaseConfig selects the ledger database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`    // sqlite file paths are relative to the workspace root
}

// ImportConfig controls statement imports.
type ImportConfig struct {
	Dir       string `yaml:"dir"`
	Delimiter string `yaml:"delimiter,omitempty"` // empty sniffs ',' or ';'
	Format    string `yaml:"format,omitempty"`    // empty picks by file extension
}

// WatchConfig schedules unattended imports.
type WatchConfig struct {
	Schedule string `yaml:"schedule"` // cron spec, five fields
	Timezone string `yaml:"timezone"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads a contflow.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
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
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{Name: businessName},
		Taxonomy: TaxonomyConfig{Path: "accounts/plano_de_contas.csv"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "data/contflow.db"},
		Import:   ImportConfig{Dir: "import"},
		Watch:    WatchConfig{Schedule: "*/15 * * * *", Timezone: "America/Sao_Paulo"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// LoadWorkspace loads <root>/.env into the process environment if present,
// reads <root>/contflow.yaml and applies environment overrides.
func LoadWorkspace(root string) (*Config, error) {
	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with the CONTFLOW_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Database.Driver, EnvDBDriver)
	set(&c.Database.DSN, EnvDBDSN)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Watch.Schedule, EnvWatchSchedule)
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: must not be empty"))
	}
	if _, err := c.Comma(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Import.Format) {
	case "", "csv", "xlsx", "xls":
	default:
		errs = append(errs, fmt.Errorf("import.format: unknown format %q", c.Import.Format))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Comma returns the CSV delimiter, or 0 to sniff it. "tab" and "\t" both
// select a tab.
func (c *Config) Comma() (rune, error) {
	d := c.Import.Delimiter
	switch d {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if size != len(d) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("import.delimiter: invalid delimiter %q", d)
	}
	return r, nil
}

// Path resolves a workspace-relative path against root.
func Path(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// DSN returns the database DSN with sqlite file paths resolved against root.
func (c *Config) DSN(root string) string {
	dsn := c.Database.DSN
	if c.Database.Driver != "sqlite" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return Path(root, dsn)
}
