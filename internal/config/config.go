package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Notify holds notification settings.
type Notify struct {
	Capture     bool `mapstructure:"capture" yaml:"capture"`
	Save        bool `mapstructure:"save" yaml:"save"`
	Copy        bool `mapstructure:"copy" yaml:"copy"`
	AutoFailure bool `mapstructure:"auto_failure" yaml:"auto_failure"`
}

// Config holds the application configuration.
type Config struct {
	Mode               string        `mapstructure:"mode" yaml:"mode"`
	Delay              time.Duration `mapstructure:"delay" yaml:"delay"`
	IncludeDecorations bool          `mapstructure:"include_decorations" yaml:"include_decorations"`
	IncludePointer     bool          `mapstructure:"include_pointer" yaml:"include_pointer"`
	SaveDir            string        `mapstructure:"save_dir" yaml:"save_dir,omitempty"`
	FilenameTemplate   string        `mapstructure:"filename_template" yaml:"filename_template"`
	Format             string        `mapstructure:"format" yaml:"format"`
	AutoInterval       time.Duration `mapstructure:"auto_interval" yaml:"auto_interval"`
	Notify             Notify        `mapstructure:"notify" yaml:"notify"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Mode:               "full",
		IncludeDecorations: true,
		FilenameTemplate:   "%NN",
		Format:             "png",
		AutoInterval:       5 * time.Second,
		Notify: Notify{
			AutoFailure: true,
		},
		LogLevel: "warn",
	}
}

// String implements fmt.Stringer and returns the configuration as yaml.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# failed to encode config: %v\n", err)
	}
	return string(data)
}

// Save writes the configuration as yaml to path, creating parent directories.
func (c *Config) Save(path string) error {
	return writeYAML(path, c)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
