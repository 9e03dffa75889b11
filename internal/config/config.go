package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/ieg-tools/projcodes/domain"
)

// ConfigFileName is the dedicated configuration file looked up by LoadConfig
const ConfigFileName = ".projcodes.toml"

// EnvPrefix prefixes environment overrides, e.g. PROJCODES_SOURCE_DIRECTORY
const EnvPrefix = "PROJCODES"

// Default source settings of the periodic project export
const (
	DefaultSourceDirectory = `N:\BASE_DATA`
	DefaultSourcePattern   = "*Project_data*.xlsx"
	DefaultSourceLabel     = "World Bank PowerBI Data Platform"
	DefaultMetadataSheet   = "metadata"
)

// DefaultDropColumns are metadata columns removed at load
var DefaultDropColumns = []string{"Project Status Code", "Lending Instrument Code"}

// Config represents the main configuration structure
type Config struct {
	// Source locates and describes the workbook export
	Source SourceConfig `mapstructure:"source" toml:"source"`

	// Query holds defaults of the filter and aggregation engines
	Query QueryConfig `mapstructure:"query" toml:"query"`

	// Output holds report and chart output configuration
	Output OutputConfig `mapstructure:"output" toml:"output"`

	// Logging configures the notice logger
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// SourceConfig locates the workbook export
type SourceConfig struct {
	// Path names a workbook explicitly and bypasses discovery
	Path string `mapstructure:"path" toml:"path,omitempty"`

	// Directory is searched for the first file matching Pattern
	Directory string `mapstructure:"directory" toml:"directory"`
	Pattern   string `mapstructure:"pattern" toml:"pattern"`

	// Label is reported as the data source after loading
	Label string `mapstructure:"label" toml:"label"`

	MetadataSheet string   `mapstructure:"metadata_sheet" toml:"metadata_sheet"`
	SectorsSheet  string   `mapstructure:"sectors_sheet" toml:"sectors_sheet"`
	ThemesSheet   string   `mapstructure:"themes_sheet" toml:"themes_sheet"`
	DropColumns   []string `mapstructure:"drop_columns" toml:"drop_columns"`

	// LoadConcurrency caps how many schemes load at once; 0 means no limit
	LoadConcurrency int `mapstructure:"load_concurrency" toml:"load_concurrency"`
}

// SheetFor returns the code sheet of a scheme
func (s SourceConfig) SheetFor(scheme domain.Scheme) string {
	if scheme == domain.SchemeTheme {
		return s.ThemesSheet
	}
	return s.SectorsSheet
}

// QueryConfig holds query defaults
type QueryConfig struct {
	MinPct                     int  `mapstructure:"min_pct" toml:"min_pct"`
	IncludeAdditionalFinancing bool `mapstructure:"include_additional_financing" toml:"include_additional_financing"`

	// DominantThreshold of 0 selects the strict-maximum rule
	DominantThreshold int `mapstructure:"dominant_threshold" toml:"dominant_threshold"`
}

// Threshold returns the configured dominant threshold, nil when unset
func (q QueryConfig) Threshold() *int {
	if q.DominantThreshold <= 0 {
		return nil
	}
	t := q.DominantThreshold
	return &t
}

// OutputConfig holds output configuration
type OutputConfig struct {
	// Directory receives saved reports and charts
	Directory string `mapstructure:"directory" toml:"directory"`

	// Format is the report format: xlsx, csv, json, yaml or text
	Format string `mapstructure:"format" toml:"format"`

	// ChartFormat is html for a file or text for the terminal
	ChartFormat string `mapstructure:"chart_format" toml:"chart_format"`
}

// LoggingConfig configures notice logging
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Directory:     DefaultSourceDirectory,
			Pattern:       DefaultSourcePattern,
			Label:         DefaultSourceLabel,
			MetadataSheet: DefaultMetadataSheet,
			SectorsSheet:  domain.SectorSchema.Sheet,
			ThemesSheet:   domain.ThemeSchema.Sheet,
			DropColumns:   append([]string(nil), DefaultDropColumns...),
		},
		Query: QueryConfig{
			MinPct:                     domain.DefaultMinPct,
			IncludeAdditionalFinancing: true,
		},
		Output: OutputConfig{
			Directory:   ".",
			Format:      string(domain.OutputFormatXLSX),
			ChartFormat: string(domain.OutputFormatHTML),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from file or returns default config.
// Environment variables prefixed with PROJCODES_ override file values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = findDefaultConfig()
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, domain.NewConfigError("failed to unmarshal config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}

	return config, nil
}

// bindDefaults registers every key so that environment overrides apply
// even when no file sets them.
func bindDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("source.path", c.Source.Path)
	v.SetDefault("source.directory", c.Source.Directory)
	v.SetDefault("source.pattern", c.Source.Pattern)
	v.SetDefault("source.label", c.Source.Label)
	v.SetDefault("source.metadata_sheet", c.Source.MetadataSheet)
	v.SetDefault("source.sectors_sheet", c.Source.SectorsSheet)
	v.SetDefault("source.themes_sheet", c.Source.ThemesSheet)
	v.SetDefault("source.drop_columns", c.Source.DropColumns)
	v.SetDefault("source.load_concurrency", c.Source.LoadConcurrency)
	v.SetDefault("query.min_pct", c.Query.MinPct)
	v.SetDefault("query.include_additional_financing", c.Query.IncludeAdditionalFinancing)
	v.SetDefault("query.dominant_threshold", c.Query.DominantThreshold)
	v.SetDefault("output.directory", c.Output.Directory)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.chart_format", c.Output.ChartFormat)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
}

// findDefaultConfig looks for the configuration file in the working
// directory and its parents, then in the home directory
func findDefaultConfig() string {
	if wd, err := os.Getwd(); err == nil {
		if path, err := NewTomlConfigLoader().FindConfig(wd); err == nil {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Source.Path == "" && (c.Source.Directory == "" || c.Source.Pattern == "") {
		return fmt.Errorf("source.directory and source.pattern are required when source.path is not set")
	}

	if c.Source.LoadConcurrency < 0 {
		return fmt.Errorf("invalid source.load_concurrency %d, must be 0 (no limit) or more", c.Source.LoadConcurrency)
	}

	sheets := map[string]string{
		"source.metadata_sheet": c.Source.MetadataSheet,
		"source.sectors_sheet":  c.Source.SectorsSheet,
		"source.themes_sheet":   c.Source.ThemesSheet,
	}
	for key, sheet := range sheets {
		if strings.TrimSpace(sheet) == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
	}

	if c.Query.MinPct < 0 || c.Query.MinPct > 100 {
		return fmt.Errorf("query.min_pct must be between 0 and 100, got %d", c.Query.MinPct)
	}

	if c.Query.DominantThreshold < 0 || c.Query.DominantThreshold > 100 {
		return fmt.Errorf("query.dominant_threshold must be between 0 and 100, got %d", c.Query.DominantThreshold)
	}

	validFormats := map[string]bool{
		"xlsx": true,
		"csv":  true,
		"json": true,
		"yaml": true,
		"text": true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: xlsx, csv, json, yaml, text", c.Output.Format)
	}

	if c.Output.ChartFormat != "html" && c.Output.ChartFormat != "text" {
		return fmt.Errorf("invalid output.chart_format '%s', must be one of: html, text", c.Output.ChartFormat)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format '%s', must be one of: console, json", c.Logging.Format)
	}

	return nil
}

// SaveConfig writes configuration to a TOML file
func SaveConfig(config *Config, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return domain.NewConfigError("failed to encode config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.NewConfigError(fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}
