package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mchmarny/schedscore/pkg/data"
	"gopkg.in/yaml.v3"
)

const (
	ScoreDefault = 100

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents scoring run options.
type Config struct {
	Score   int          `yaml:"score"`
	Format  string       `yaml:"format"`
	Debug   bool         `yaml:"debug"`
	Columns data.Columns `yaml:"columns"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Score:   ScoreDefault,
		Format:  FormatText,
		Columns: data.DefaultColumns(),
	}
}

// Load reads config from the YAML file at path over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return c, nil
}

// Read parses YAML config from r over the defaults and validates the result.
func Read(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	c := Default()
	if len(bytes.TrimSpace(b)) > 0 {
		d := yaml.NewDecoder(bytes.NewReader(b))
		d.KnownFields(true)
		if err := d.Decode(c); err != nil {
			return nil, fmt.Errorf("error unmarshalling config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate normalizes the format and fills empty column names with defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config required")
	}

	if c.Score < 0 {
		return fmt.Errorf("score must be non-negative: %d", c.Score)
	}

	f, err := ParseFormat(c.Format)
	if err != nil {
		return err
	}
	c.Format = f

	def := data.DefaultColumns()
	if c.Columns.Submission == "" {
		c.Columns.Submission = def.Submission
	}
	if c.Columns.Schedule == "" {
		c.Columns.Schedule = def.Schedule
	}
	if c.Columns.Average == "" {
		c.Columns.Average = def.Average
	}
	return nil
}

// ParseFormat returns the canonical output format name.
func ParseFormat(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", v)
	}
}
