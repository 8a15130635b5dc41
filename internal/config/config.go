// ABOUTME: Configuration loading and persistence for gartrix
// ABOUTME: Reads JSON, YAML or TOML files, overlays GARTRIX_* environment variables, writes back

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable that overrides a file value
const EnvPrefix = "GARTRIX_"

// DefaultPath is used when no path is given
const DefaultPath = "config.json"

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config represents the complete gartrix configuration
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	DatabaseURL string        `json:"database_url" yaml:"database_url" toml:"database_url" env:"DATABASE_URL"`
	Logging     LoggingConfig `json:"logging" yaml:"logging" toml:"logging" envPrefix:"LOG_"`

	// templates holds the unexpanded file text of each field in fields()
	// order, for fields whose file value contained a ${VAR} placeholder.
	templates [4]string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" env:"LEVEL"`
	Format string `json:"format" yaml:"format" toml:"format" env:"FORMAT"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// format is a config file encoding, chosen by file extension
type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// Load reads the configuration file at path and overlays the environment.
// A missing file is not an error: defaults are used instead. A file that
// exists but cannot be parsed is.
// Environment variables in the format ${VAR_NAME} inside the file are expanded,
// then GARTRIX_* variables replace the file values they name.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := expandEnvVars(string(data))
		if err := decode(formatFor(path), []byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.templates = templatesOf(formatFor(path), data)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// fields lists the string fields in a fixed order shared with templates.
func (c *Config) fields() [4]*string {
	return [4]*string{&c.BaseURL, &c.DatabaseURL, &c.Logging.Level, &c.Logging.Format}
}

// templatesOf decodes the file without expansion and keeps the values that
// carry a placeholder. A file that only parses once expanded has none.
func templatesOf(f format, data []byte) [4]string {
	var out [4]string
	if !envVarPattern.Match(data) {
		return out
	}

	var raw Config
	if err := decode(f, data, &raw); err != nil {
		return out
	}
	for i, field := range raw.fields() {
		if envVarPattern.MatchString(*field) {
			out[i] = *field
		}
	}
	return out
}

// withTemplates returns a copy of c in which every field still holding the
// expansion of its file placeholder is put back to the placeholder.
// Fields changed since loading, by GARTRIX_* variables or by callers, keep
// their current value.
func (c *Config) withTemplates() *Config {
	out := *c
	fields := out.fields()
	for i, tmpl := range c.templates {
		if tmpl != "" && *fields[i] == expandEnvVars(tmpl) {
			*fields[i] = tmpl
		}
	}
	return &out
}

func decode(f format, data []byte, cfg *Config) error {
	switch f {
	case formatYAML:
		return yaml.Unmarshal(data, cfg)
	case formatTOML:
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return json.Unmarshal(data, cfg)
	}
}

// Write saves the configuration to path in the format its extension names.
// Values that came from ${VAR} placeholders in the loaded file are written
// back as the placeholder, not the expanded value.
// Parent directories are created if needed.
func (c *Config) Write(path string) error {
	data, err := c.withTemplates().encode(formatFor(path))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) encode(f format) ([]byte, error) {
	switch f {
	case formatYAML:
		return yaml.Marshal(c)
	case formatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks the fields needed to reach the store.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (or set %sDATABASE_URL)", EnvPrefix)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}
