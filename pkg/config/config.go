// Package config provides configuration management for permsim. It handles
// loading and saving the optional YAML configuration file that carries
// session defaults; command line flags always win over file values.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/permsim/pkg/errors"
	"github.com/glorpus-work/permsim/pkg/exclude"
	"github.com/glorpus-work/permsim/pkg/fsutil"
	"github.com/glorpus-work/permsim/pkg/permspec"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Duration wraps time.Duration so config files can use human readable
// values like "30s"; yaml.v3 only understands integer nanoseconds natively.
type Duration time.Duration

// String renders the duration in the standard form.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts either a duration string or integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return errors.Wrapf(errors.ErrConfigParse, "duration %q", s)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	return errors.Wrapf(errors.ErrConfigParse, "duration %v", value.Value)
}

// Settings carries session defaults.
type Settings struct {
	// Permissions is the default permission string when -p is not given.
	// The tool simulates full denial by default.
	Permissions string `yaml:"permissions"`

	// Exclude is the default exclusion pattern.
	Exclude string `yaml:"exclude,omitempty"`

	// Recursive applies the mode to the whole tree by default.
	Recursive bool `yaml:"recursive"`

	// NoRestore leaves the simulated state applied when a run ends.
	// Restoration is the default; leaving a tree degraded must be opted
	// into explicitly.
	NoRestore bool `yaml:"no_restore"`

	// Hold keeps the simulated state for a fixed duration before
	// restoring. Zero means hold until interrupted.
	Hold Duration `yaml:"hold"`

	// Output settings.
	Verbose bool `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`
}

// DefaultPermissions removes all permissions, the most aggressive denial.
const DefaultPermissions = "0000"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Permissions: DefaultPermissions,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults so the tool works without any configuration at all.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve config path %s", path)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "open config file %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes the configuration atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolve config path %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(err, "create config file %s", tempPath)
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrapf(err, "replace config file %s", absPath)
	}
	return nil
}

// Validate checks the configured defaults with the same parsers the session
// uses, so a bad config fails before any mutation.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigParse
	}
	if _, err := permspec.Parse(c.Settings.Permissions); err != nil {
		return err
	}
	if _, err := exclude.Compile(c.Settings.Exclude); err != nil {
		return err
	}
	if c.Settings.Hold < 0 {
		return errors.Wrapf(errors.ErrConfigParse, "hold duration must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Settings.Permissions == "" {
		c.Settings.Permissions = DefaultPermissions
	}
}

// GetDefaultConfigPath returns the user-level config file location.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "determine user config directory")
	}
	return filepath.Join(configDir, "permsim", "config.yaml"), nil
}
