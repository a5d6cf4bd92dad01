package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tracker/internal/domain"
	"tracker/internal/validation"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds all configuration options for the tracker
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Timer       TimerConfig       `yaml:"timer"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Application ApplicationConfig `yaml:"application"`
	Server      ServerConfig      `yaml:"server"`
	Notify      NotifyConfig      `yaml:"notify"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" env:"TT_DB_DRIVER"`
	Dir            string        `yaml:"dir" env:"TT_DB_DIR"`
	Filename       string        `yaml:"filename" env:"TT_DB_FILENAME"`
	DSN            string        `yaml:"dsn" env:"TT_DB_DSN"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"TT_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"TT_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"TT_DB_DIR_PERMISSIONS"`
	MaxConns       int           `yaml:"max_conns" env:"TT_DB_MAX_CONNS"`
}

// TimerConfig holds the timer engine settings
type TimerConfig struct {
	// DayEnd is the stop time given to timers left running on a past day.
	DayEnd   string `yaml:"day_end" env:"TT_TIMER_DAY_END"`
	Location string `yaml:"location" env:"TT_TIMER_LOCATION"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	NameMinLength        int `yaml:"name_min_length" env:"TT_VALIDATION_NAME_MIN"`
	NameMaxLength        int `yaml:"name_max_length" env:"TT_VALIDATION_NAME_MAX"`
	DescriptionMaxLength int `yaml:"description_max_length" env:"TT_VALIDATION_DESCRIPTION_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat string `yaml:"time_format" env:"TT_DISPLAY_TIME_FORMAT"`
	DateFormat string `yaml:"date_format" env:"TT_DISPLAY_DATE_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TT_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TT_APP_VERBOSE"`
	User    string        `yaml:"user" env:"TT_USER"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"TT_SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"TT_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"TT_SERVER_WRITE_TIMEOUT"`
}

// NotifyConfig holds the Discord webhook used to announce auto-closed timers.
// Both fields empty disables notifications.
type NotifyConfig struct {
	DiscordWebhookID    string `yaml:"discord_webhook_id" env:"TT_DISCORD_WEBHOOK_ID"`
	DiscordWebhookToken string `yaml:"discord_webhook_token" env:"TT_DISCORD_WEBHOOK_TOKEN"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tt")
	limits := validation.DefaultLimits()

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tracker.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
			MaxConns:       10,
		},
		Timer: TimerConfig{
			DayEnd:   "23:59",
			Location: "Local",
		},
		Validation: ValidationConfig{
			NameMinLength:        limits.NameMinLength,
			NameMaxLength:        limits.NameMaxLength,
			DescriptionMaxLength: limits.DescriptionMaxLength,
		},
		Display: DisplayConfig{
			TimeFormat: "15:04",
			DateFormat: domain.DateLayout,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// DayEnd returns the parsed end-of-day sentinel.
func (c *Config) DayEnd() (domain.TimeOfDay, error) {
	return domain.ParseTimeOfDay(c.Timer.DayEnd)
}

// Location returns the time zone that decides what "today" is.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timer.Location)
}

// Limits returns the validation limits.
func (c *Config) Limits() validation.Limits {
	return validation.Limits{
		NameMinLength:        c.Validation.NameMinLength,
		NameMaxLength:        c.Validation.NameMaxLength,
		DescriptionMaxLength: c.Validation.DescriptionMaxLength,
	}
}

// NotificationsEnabled reports whether a Discord webhook is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.Notify.DiscordWebhookID != "" && c.Notify.DiscordWebhookToken != ""
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	// Database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverPostgres, DriverMySQL:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "dsn is required for driver " + c.Database.Driver}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "unsupported driver " + strconv.Quote(c.Database.Driver)}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Database.MaxConns < 1 {
		return &ConfigError{Field: "database.max_conns", Message: "max connections must be at least 1"}
	}

	// Timer configuration
	if dayEnd, err := c.DayEnd(); err != nil {
		return &ConfigError{Field: "timer.day_end", Message: err.Error()}
	} else if dayEnd == 0 {
		// A past-day timer closed at midnight would carry no time at all.
		return &ConfigError{Field: "timer.day_end", Message: "day end must be later than 00:00"}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "timer.location", Message: "unknown time zone " + strconv.Quote(c.Timer.Location)}
	}

	// Validation configuration
	if c.Validation.NameMinLength < 1 {
		return &ConfigError{Field: "validation.name_min_length", Message: "name minimum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < c.Validation.NameMinLength {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must be greater than minimum length"}
	}
	if c.Validation.DescriptionMaxLength < 1 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length must be at least 1"}
	}

	// Display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	// Application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}

	// A half-configured webhook is most likely a typo.
	if (c.Notify.DiscordWebhookID == "") != (c.Notify.DiscordWebhookToken == "") {
		return &ConfigError{Field: "notify", Message: "discord webhook id and token must be set together"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
