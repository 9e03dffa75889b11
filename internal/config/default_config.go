package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/ieg-tools/projcodes/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from DefaultConfig to keep a single source of truth.
type DefaultConfigValues struct {
	SourceDirectory string
	SourcePattern   string
	SourceLabel     string
	MetadataSheet   string
	SectorsSheet    string
	ThemesSheet     string
	DropColumns     string
	LoadConcurrency int

	MinPct                     int
	IncludeAdditionalFinancing bool
	DominantThreshold          int
	ThresholdWarnAt            int

	OutputDirectory   string
	OutputFormat      string
	OutputChartFormat string

	LogLevel  string
	LogFormat string
}

func tomlString(s string) string {
	return "'" + s + "'"
}

// newDefaultConfigValues creates a DefaultConfigValues populated from DefaultConfig.
func newDefaultConfigValues() DefaultConfigValues {
	cfg := DefaultConfig()
	drop := make([]string, len(cfg.Source.DropColumns))
	for i, c := range cfg.Source.DropColumns {
		drop[i] = tomlString(c)
	}
	return DefaultConfigValues{
		SourceDirectory: tomlString(cfg.Source.Directory),
		SourcePattern:   tomlString(cfg.Source.Pattern),
		SourceLabel:     tomlString(cfg.Source.Label),
		MetadataSheet:   tomlString(cfg.Source.MetadataSheet),
		SectorsSheet:    tomlString(cfg.Source.SectorsSheet),
		ThemesSheet:     tomlString(cfg.Source.ThemesSheet),
		DropColumns:     "[" + strings.Join(drop, ", ") + "]",
		LoadConcurrency: cfg.Source.LoadConcurrency,

		MinPct:                     cfg.Query.MinPct,
		IncludeAdditionalFinancing: cfg.Query.IncludeAdditionalFinancing,
		DominantThreshold:          cfg.Query.DominantThreshold,
		ThresholdWarnAt:            domain.DominantThresholdWarnAt,

		OutputDirectory:   tomlString(cfg.Output.Directory),
		OutputFormat:      tomlString(cfg.Output.Format),
		OutputChartFormat: tomlString(cfg.Output.ChartFormat),

		LogLevel:  tomlString(cfg.Logging.Level),
		LogFormat: tomlString(cfg.Logging.Format),
	}
}

// GenerateDefaultConfigTOML renders the default config template and returns
// the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// ParseConfigTOML decodes configuration text over the defaults and validates it
func ParseConfigTOML(text string) (*Config, error) {
	cfg, err := NewTomlConfigLoader().Decode([]byte(text))
	if err != nil {
		return nil, domain.NewConfigError("failed to parse configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}
