package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
	path   string
}

// NewLoader creates a loader reading the file named by $TT_CONFIG, or
// ~/.tt/config.yaml when unset.
func NewLoader() *Loader {
	return NewLoaderWithFile(DefaultFilePath())
}

// NewLoaderWithFile creates a loader reading path. An empty path skips the
// file step.
func NewLoaderWithFile(path string) *Loader {
	return &Loader{
		config: NewConfig(),
		path:   path,
	}
}

// DefaultFilePath returns the configuration file location.
func DefaultFilePath() string {
	if path := os.Getenv("TT_CONFIG"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".tt", "config.yaml")
}

// Load resolves the configuration without flag overrides.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithOverrides(nil)
}

// LoadWithOverrides resolves the configuration in layers, each overriding
// the previous one: defaults, the YAML file, TT_* variables, then the flags
// in overrides (nil for none). The result is validated.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	overrides.apply(l.config)
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// loadFile merges the YAML file into the defaults. A missing file is not an
// error; keys absent from the file keep their current value.
func (l *Loader) loadFile() error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, l.config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", l.path, err)
	}
	return nil
}

// ConfigOverrides holds the command line flags the user actually set.
// Nil fields leave the configuration alone.
type ConfigOverrides struct {
	DBDriver       *string
	DBDir          *string
	DBFilename     *string
	DBDSN          *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	DayEnd   *string
	Location *string

	Timeout *time.Duration
	Verbose *bool
	User    *string

	Addr *string
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (o *ConfigOverrides) apply(c *Config) {
	if o == nil {
		return
	}
	override(&c.Database.Driver, o.DBDriver)
	override(&c.Database.Dir, o.DBDir)
	override(&c.Database.Filename, o.DBFilename)
	override(&c.Database.DSN, o.DBDSN)
	override(&c.Database.QueryTimeout, o.DBQueryTimeout)
	override(&c.Database.WriteTimeout, o.DBWriteTimeout)
	override(&c.Timer.DayEnd, o.DayEnd)
	override(&c.Timer.Location, o.Location)
	override(&c.Application.Timeout, o.Timeout)
	override(&c.Application.Verbose, o.Verbose)
	override(&c.Application.User, o.User)
	override(&c.Server.Addr, o.Addr)
}
