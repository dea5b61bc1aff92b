package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the jsonrpc configuration file.
type Config struct {
	DefaultOptions []string          `json:"defaultOptions,omitempty" yaml:"defaultOptions,omitempty"` // prepended to CLI args
	Pretty         string            `json:"pretty,omitempty" yaml:"pretty,omitempty"`
	Style          string            `json:"style,omitempty" yaml:"style,omitempty"`
	Timeout        float64           `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	CheckStatus    *bool             `json:"checkStatus,omitempty" yaml:"checkStatus,omitempty"`
	IgnoreStdin    *bool             `json:"ignoreStdin,omitempty" yaml:"ignoreStdin,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // default HTTP headers

	// Path is the file the config was loaded from, empty for defaults.
	Path string `json:"-" yaml:"-"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetCheckStatus returns the check status setting, defaulting to false
func (c *Config) GetCheckStatus() bool {
	return getBool(c.CheckStatus, false)
}

// GetIgnoreStdin returns the ignore stdin setting, defaulting to false
func (c *Config) GetIgnoreStdin() bool {
	return getBool(c.IgnoreStdin, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".jsonrpc.config.json",
	"jsonrpc.config.json",
	".jsonrpcrc",
	"config.json",
	"config.yaml",
	"config.yml",
}

// DefaultDir returns the per-user config directory.
func DefaultDir() string {
	if dir := os.Getenv("JSONRPC_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "jsonrpc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jsonrpc")
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory and then DefaultDir.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	for _, dir := range []string{".", DefaultDir()} {
		if dir == "" {
			continue
		}
		cfg, err := FindAndLoadConfig(dir)
		if err != nil {
			return nil, err
		}
		if cfg.Path != "" {
			return cfg, nil
		}
	}

	return DefaultConfig(), nil
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes and validates a config document. JSON documents are
// decoded as YAML when asYAML is set.
func Parse(data []byte, asYAML bool) (*Config, error) {
	unmarshal := json.Unmarshal
	if asYAML {
		unmarshal = yaml.Unmarshal
	}

	var doc any
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return DefaultConfig(), nil
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if len(other.DefaultOptions) > 0 {
		result.DefaultOptions = append([]string(nil), other.DefaultOptions...)
	}
	if other.Pretty != "" {
		result.Pretty = other.Pretty
	}
	if other.Style != "" {
		result.Style = other.Style
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Path != "" {
		result.Path = other.Path
	}

	// Boolean flags - only override if explicitly set in other config
	if other.CheckStatus != nil {
		result.CheckStatus = other.CheckStatus
	}
	if other.IgnoreStdin != nil {
		result.IgnoreStdin = other.IgnoreStdin
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file, as YAML when the path has
// a .yaml or .yml extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ErrInvalid is wrapped by every schema validation failure.
var ErrInvalid = errors.New("config does not match schema")
