// Package config provides configuration loading and management for goslin.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/goslin/pkg/lipid"
)

// Config represents the complete goslin configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Parser  ParserConfig  `yaml:"parser"`
	Convert ConvertConfig `yaml:"convert"`
	Filter  FilterConfig  `yaml:"filter"`
	Serve   ServeConfig   `yaml:"serve"`

	// AdductsFile is a CSV of extra adducts (adduct,charge) added to the
	// default registry
	AdductsFile string `yaml:"adducts_file"`
}

// LogConfig configures the slog logger
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
}

// ParserConfig configures lipid name parsing
type ParserConfig struct {
	// MaxNameLength rejects longer names before parsing
	MaxNameLength int `yaml:"max_name_length"`
	// Strict makes unparsable names fatal instead of skipped. Nil leaves
	// the value of a lower layer in place.
	Strict *bool `yaml:"strict,omitempty"`
	// OutputLevel is the level names are normalized to (empty = as parsed)
	OutputLevel string `yaml:"output_level"`
}

// IsStrict reports whether unparsable names are fatal.
func (p ParserConfig) IsStrict() bool {
	return p.Strict != nil && *p.Strict
}

// ConvertConfig configures library conversion
type ConvertConfig struct {
	Workers   int     `yaml:"workers"`
	ChunkSize int     `yaml:"chunk_size"`
	TopN      int     `yaml:"top_n"`
	Cutoff    float64 `yaml:"cutoff"`
}

// FilterConfig selects which lipids are kept
type FilterConfig struct {
	Categories []string `yaml:"categories,omitempty"`
	Classes    []string `yaml:"classes,omitempty"`
	MinLevel   string   `yaml:"min_level"`
	MinMZ      float64  `yaml:"min_mz"`
	MaxMZ      float64  `yaml:"max_mz"`
}

// ServeConfig configures the HTTP endpoint
type ServeConfig struct {
	Addr        string        `yaml:"addr"`
	MetricsPath string        `yaml:"metrics_path"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Parser: ParserConfig{
			MaxNameLength: 512,
		},
		Convert: ConvertConfig{
			Workers:   4,
			ChunkSize: 1000,
		},
		Serve: ServeConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log.format must be text or json, got '%s'", c.Log.Format)
	}
	if c.Parser.MaxNameLength <= 0 {
		return fmt.Errorf("parser.max_name_length must be positive")
	}
	if c.Parser.OutputLevel != "" {
		if _, err := lipid.ParseLevel(c.Parser.OutputLevel); err != nil {
			return fmt.Errorf("parser.output_level: %w", err)
		}
	}
	if c.Convert.Workers < 1 {
		return fmt.Errorf("convert.workers must be at least 1")
	}
	if c.Convert.ChunkSize < 1 {
		return fmt.Errorf("convert.chunk_size must be at least 1")
	}
	if c.Convert.TopN < 0 {
		return fmt.Errorf("convert.top_n must not be negative")
	}
	if c.Convert.Cutoff < 0 || c.Convert.Cutoff > 100 {
		return fmt.Errorf("convert.cutoff must be between 0 and 100")
	}
	if c.Filter.MinLevel != "" {
		if _, err := lipid.ParseLevel(c.Filter.MinLevel); err != nil {
			return fmt.Errorf("filter.min_level: %w", err)
		}
	}
	if c.Filter.MaxMZ > 0 && c.Filter.MaxMZ < c.Filter.MinMZ {
		return fmt.Errorf("filter.max_mz must not be below filter.min_mz")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := readLayer(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// readLayer reads only the fields a YAML file sets.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	layer := &Config{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	// Parser
	if other.Parser.MaxNameLength != 0 {
		c.Parser.MaxNameLength = other.Parser.MaxNameLength
	}
	if other.Parser.Strict != nil {
		strict := *other.Parser.Strict
		c.Parser.Strict = &strict
	}
	if other.Parser.OutputLevel != "" {
		c.Parser.OutputLevel = other.Parser.OutputLevel
	}

	// Convert
	if other.Convert.Workers != 0 {
		c.Convert.Workers = other.Convert.Workers
	}
	if other.Convert.ChunkSize != 0 {
		c.Convert.ChunkSize = other.Convert.ChunkSize
	}
	if other.Convert.TopN != 0 {
		c.Convert.TopN = other.Convert.TopN
	}
	if other.Convert.Cutoff != 0 {
		c.Convert.Cutoff = other.Convert.Cutoff
	}

	// Filter
	if len(other.Filter.Categories) > 0 {
		c.Filter.Categories = other.Filter.Categories
	}
	if len(other.Filter.Classes) > 0 {
		c.Filter.Classes = other.Filter.Classes
	}
	if other.Filter.MinLevel != "" {
		c.Filter.MinLevel = other.Filter.MinLevel
	}
	if other.Filter.MinMZ != 0 {
		c.Filter.MinMZ = other.Filter.MinMZ
	}
	if other.Filter.MaxMZ != 0 {
		c.Filter.MaxMZ = other.Filter.MaxMZ
	}

	// Serve
	if other.Serve.Addr != "" {
		c.Serve.Addr = other.Serve.Addr
	}
	if other.Serve.MetricsPath != "" {
		c.Serve.MetricsPath = other.Serve.MetricsPath
	}
	if other.Serve.ReadTimeout != 0 {
		c.Serve.ReadTimeout = other.Serve.ReadTimeout
	}

	if other.AdductsFile != "" {
		c.AdductsFile = other.AdductsFile
	}
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", s)
}

// NewLogger builds the logger described by cfg writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
