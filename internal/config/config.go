package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/escolamerge/internal/join"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Default paths, relative to the working directory.
const (
	DefaultLeftPath   = "build/escolas_processed_equip.csv"
	DefaultRightPath  = "build/escolas.csv"
	DefaultOutputPath = "build/escolas_merged.csv"
	DefaultKey        = "Escola"
)

// Config holds the settings for one merge run.
type Config struct {
	// Left is dataset A; its columns win on name clashes.
	Left   string `yaml:"left"`
	Right  string `yaml:"right"`
	Output string `yaml:"output"`
	Key    string `yaml:"key"`
	How    string `yaml:"how"`

	// Report, when set, receives a summary file (.md for markdown)
	Report string `yaml:"report"`

	Export ExportConfig `yaml:"export"`
}

// ExportConfig configures the optional database export.
type ExportConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
	Replace     bool   `yaml:"replace"`
}

// Default returns the configuration that reproduces the fixed-path merge.
func Default() *Config {
	return &Config{
		Left:   DefaultLeftPath,
		Right:  DefaultRightPath,
		Output: DefaultOutputPath,
		Key:    DefaultKey,
		How:    string(join.Outer),
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Left == "" || c.Right == "" || c.Output == "" {
		return fmt.Errorf("%w: left, right and output paths are required", ErrInvalid)
	}
	if c.Key == "" {
		return fmt.Errorf("%w: join key is required", ErrInvalid)
	}
	if _, err := join.ParseKind(c.How); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	out := filepath.Clean(c.Output)
	if out == filepath.Clean(c.Left) || out == filepath.Clean(c.Right) {
		return fmt.Errorf("%w: output %s would overwrite an input", ErrInvalid, c.Output)
	}

	if c.Export.DatabaseURL != "" && c.Export.Table == "" {
		return fmt.Errorf("%w: export table is required with a database URL", ErrInvalid)
	}
	if c.Export.DatabaseURL == "" && c.Export.Table != "" {
		return fmt.Errorf("%w: export table given without a database URL", ErrInvalid)
	}
	return nil
}
