package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Timer.DayEnd != "23:59" {
		t.Errorf("DayEnd = %q, want 23:59", cfg.Timer.DayEnd)
	}
	dayEnd, err := cfg.DayEnd()
	if err != nil || dayEnd != domain.EndOfDay {
		t.Errorf("DayEnd() = %v, %v; want %v", dayEnd, err, domain.EndOfDay)
	}
	if cfg.Limits().DescriptionMaxLength != 1000 {
		t.Errorf("DescriptionMaxLength = %d, want 1000", cfg.Limits().DescriptionMaxLength)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoaderFileThenEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
database:
  driver: sqlite
  filename: from-file.db
  query_timeout: 3s
timer:
  day_end: "18:00"
validation:
  description_max_length: 200
server:
  addr: ":9999"
`)
	t.Setenv("TT_DB_FILENAME", "from-env.db")
	t.Setenv("TT_DB_DIR", t.TempDir())

	cfg, err := NewLoaderWithFile(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Filename != "from-env.db" {
		t.Errorf("Filename = %q, environment should win over file", cfg.Database.Filename)
	}
	if cfg.Database.QueryTimeout != 3*time.Second {
		t.Errorf("QueryTimeout = %v, want 3s", cfg.Database.QueryTimeout)
	}
	if cfg.Database.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %v, keys missing from the file keep defaults", cfg.Database.WriteTimeout)
	}
	if cfg.Timer.DayEnd != "18:00" {
		t.Errorf("DayEnd = %q, want 18:00", cfg.Timer.DayEnd)
	}
	if cfg.Validation.DescriptionMaxLength != 200 {
		t.Errorf("DescriptionMaxLength = %d, want 200", cfg.Validation.DescriptionMaxLength)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	t.Setenv("TT_DB_DIR", t.TempDir())
	cfg, err := NewLoaderWithFile(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Filename != "tracker.db" {
		t.Errorf("Filename = %q, want default", cfg.Database.Filename)
	}
}

func TestLoaderMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "database: [not, a, map")
	if _, err := NewLoaderWithFile(path).Load(); err == nil {
		t.Fatal("Load() expected parse error")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv("TT_DB_DIR", t.TempDir())
	t.Setenv("TT_USER", "env-user")

	user := "flag-user"
	dayEnd := "22:30"
	verbose := true
	cfg, err := NewLoaderWithFile("").LoadWithOverrides(&ConfigOverrides{
		User:    &user,
		DayEnd:  &dayEnd,
		Verbose: &verbose,
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides() error = %v", err)
	}
	if cfg.Application.User != "flag-user" {
		t.Errorf("User = %q, flags should win over environment", cfg.Application.User)
	}
	if got, _ := cfg.DayEnd(); got != domain.NewTimeOfDay(22, 30, 0) {
		t.Errorf("DayEnd() = %v, want 22:30", got)
	}
	if !cfg.Application.Verbose {
		t.Error("Verbose override not applied")
	}
}

func TestLoadFromEnvironmentIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TT_DB_QUERY_TIMEOUT", "soon")
	t.Setenv("TT_DB_MAX_CONNS", "many")
	t.Setenv("TT_DB_DIR_PERMISSIONS", "0700")

	cfg := NewConfig()
	if err := cfg.LoadFromEnvironment(); err != nil {
		t.Fatalf("LoadFromEnvironment() error = %v", err)
	}
	if cfg.Database.QueryTimeout != 10*time.Second {
		t.Errorf("QueryTimeout = %v, want fallback 10s", cfg.Database.QueryTimeout)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("MaxConns = %d, want fallback 10", cfg.Database.MaxConns)
	}
	if cfg.Database.DirPermissions != 0700 {
		t.Errorf("DirPermissions = %o, want 700", cfg.Database.DirPermissions)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, "database.dsn"},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = DriverMySQL }, "database.dsn"},
		{"empty sqlite dir", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"zero query timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "database.query_timeout"},
		{"no connections", func(c *Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"bad day end", func(c *Config) { c.Timer.DayEnd = "25:00" }, "timer.day_end"},
		{"midnight day end", func(c *Config) { c.Timer.DayEnd = "00:00" }, "timer.day_end"},
		{"bad location", func(c *Config) { c.Timer.Location = "Mars/Olympus" }, "timer.location"},
		{"name min", func(c *Config) { c.Validation.NameMinLength = 0 }, "validation.name_min_length"},
		{"name max", func(c *Config) { c.Validation.NameMaxLength = 0 }, "validation.name_max_length"},
		{"description max", func(c *Config) { c.Validation.DescriptionMaxLength = 0 }, "validation.description_max_length"},
		{"app timeout", func(c *Config) { c.Application.Timeout = -time.Second }, "application.timeout"},
		{"server addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"half webhook", func(c *Config) { c.Notify.DiscordWebhookID = "123" }, "notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestPostgresWithDSNValidates(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Driver = DriverPostgres
	cfg.Database.DSN = "postgres://tracker@localhost/tracker"
	cfg.Database.Dir = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromEnvironmentCoversEveryKind(t *testing.T) {
	t.Setenv("TT_SERVER_READ_TIMEOUT", "2m")
	t.Setenv("TT_APP_VERBOSE", "true")
	t.Setenv("TT_VALIDATION_NAME_MAX", "40")
	t.Setenv("TT_DISCORD_WEBHOOK_ID", "123")
	t.Setenv("TT_DISCORD_WEBHOOK_TOKEN", "secret")
	t.Setenv("TT_TIMER_LOCATION", "")

	cfg := NewConfig()
	if err := cfg.LoadFromEnvironment(); err != nil {
		t.Fatalf("LoadFromEnvironment() error = %v", err)
	}
	if cfg.Server.ReadTimeout != 2*time.Minute {
		t.Errorf("ReadTimeout = %v, want 2m", cfg.Server.ReadTimeout)
	}
	if !cfg.Application.Verbose {
		t.Error("Verbose should be set from TT_APP_VERBOSE")
	}
	if cfg.Validation.NameMaxLength != 40 {
		t.Errorf("NameMaxLength = %d, want 40", cfg.Validation.NameMaxLength)
	}
	if !cfg.NotificationsEnabled() {
		t.Error("webhook variables should enable notifications")
	}
	if cfg.Timer.Location != "Local" {
		t.Errorf("Location = %q, empty variables keep the default", cfg.Timer.Location)
	}
}
