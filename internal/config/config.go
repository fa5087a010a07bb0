package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the cinject configuration
type Config struct {
	// Template inserted after each definition's opening brace
	Snippet string `yaml:"snippet,omitempty"`

	// Template action delimiters, e.g. ["[[", "]]"]; empty keeps {{ }}
	Delims []string `yaml:"delims,omitempty"`

	// Directories searched for #include targets
	IncludePaths []string `yaml:"include_paths,omitempty"`

	// File extensions picked up by directory scans
	Extensions []string `yaml:"extensions,omitempty"`

	// Path substrings excluded from the targets
	Skip []string `yaml:"skip,omitempty"`

	// Collect definitions from included headers too
	FollowIncludes bool `yaml:"follow_includes,omitempty"`

	// Parallelism for parsing and writing; 0 means one per CPU
	Jobs int `yaml:"jobs,omitempty"`

	// Write <file>.bak before the first change
	Backup bool `yaml:"backup,omitempty"`

	// Reject translation units with syntax errors
	Strict bool `yaml:"strict,omitempty"`
}

// DefaultSnippet is the snippet used when none is configured
const DefaultSnippet = "  __cinject_trace(\"{{.Name}}\", __FILE__, __LINE__);\n"

var configNames = []string{".cinject.yaml", ".cinject.yml"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Snippet:    DefaultSnippet,
		Extensions: []string{".c", ".cc", ".cpp", ".h", ".hpp"},
	}
}

// LoadConfig loads configuration from a file. With an empty path the current
// directory and then the home directory are searched; a missing file yields
// the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	explicit := configPath != ""
	if !explicit {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

// Validate checks values that cannot be fixed up later
func (c *Config) Validate() error {
	if len(c.Delims) != 0 && len(c.Delims) != 2 {
		return fmt.Errorf("delims must have exactly two entries, got %d", len(c.Delims))
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// SaveConfig writes configuration to a file
func SaveConfig(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// findConfigFile looks for config files in the current directory, then in
// the home directory
func findConfigFile() string {
	for _, candidate := range configNames {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range configNames {
		candidate := filepath.Join(homeDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
