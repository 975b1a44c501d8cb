package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quoteboard/internal/normalize"
	"quoteboard/internal/query"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where init writes the config file.
const DefaultConfigPath = ".quoteboard/config.yaml"

// Config holds all quoteboard configuration.
type Config struct {
	// Where quotes come from and how long they are cached
	Source SourceConfig `yaml:"source"`

	// Source header names for the canonical columns
	Columns normalize.Schema `yaml:"columns"`

	// Matching rules
	Query QueryConfig `yaml:"query"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Dashboard appearance
	UI UIConfig `yaml:"ui"`
}

// QueryConfig configures filtering.
type QueryConfig struct {
	query.Policy `yaml:",inline"`

	// AllLabel is shown for the "all vendors" choice.
	AllLabel string `yaml:"all_label"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:  DefaultSourceConfig(),
		Columns: normalize.DefaultSchema(),
		Query: QueryConfig{
			Policy:   query.DefaultPolicy(),
			AllLabel: "全部",
		},
		Logging: DefaultLoggingConfig(),
		UI:      DefaultUIConfig(),
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if s := os.Getenv("QUOTEBOARD_SOURCE"); s != "" {
		c.Source.Location = s
	}
	// A sheet URL wins over a generic source override.
	if u := os.Getenv("QUOTEBOARD_SHEET_URL"); u != "" {
		c.Source.Location = u
	}
	if os.Getenv("QUOTEBOARD_DARK_MODE") == "1" {
		c.UI.Theme = ThemeDark
	}
	if lvl := os.Getenv("QUOTEBOARD_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
		c.Logging.DebugMode = true
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Location) == "" {
		return fmt.Errorf("no source configured (set source.location or QUOTEBOARD_SOURCE)")
	}

	seen := make(map[string]string)
	cols := map[string]string{
		"vendor":     c.Columns.Vendor,
		"item":       c.Columns.Item,
		"quantity":   c.Columns.Quantity,
		"amount":     c.Columns.Amount,
		"unit_price": c.Columns.UnitPrice,
	}
	for _, canonical := range []string{"vendor", "item", "quantity", "amount", "unit_price"} {
		header := strings.TrimSpace(cols[canonical])
		if header == "" {
			return fmt.Errorf("columns.%s must not be empty", canonical)
		}
		if other, dup := seen[header]; dup {
			return fmt.Errorf("columns.%s and columns.%s both map to %q", other, canonical, header)
		}
		seen[header] = canonical
	}

	switch c.UI.Theme {
	case "", ThemeAuto, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	return nil
}
