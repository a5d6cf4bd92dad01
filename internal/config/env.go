package config

import (
	"os"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// LoadFromEnvironment overrides every field tagged `env:"NAME"` whose
// variable is set and non-empty. Values that do not parse are ignored and
// the current setting is kept. Unsigned fields are file modes and parse as
// octal.
func (c *Config) LoadFromEnvironment() error {
	sections := reflect.ValueOf(c).Elem()
	for i := 0; i < sections.NumField(); i++ {
		section := sections.Field(i)
		for j := 0; j < section.NumField(); j++ {
			name := section.Type().Field(j).Tag.Get("env")
			if name == "" {
				continue
			}
			if raw := os.Getenv(name); raw != "" {
				setFromEnv(section.Field(j), raw)
			}
		}
	}
	return nil
}

func setFromEnv(field reflect.Value, raw string) {
	switch {
	case field.Type() == durationType:
		if d, err := time.ParseDuration(raw); err == nil {
			field.SetInt(int64(d))
		}
	case field.Kind() == reflect.String:
		field.SetString(raw)
	case field.Kind() == reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			field.SetBool(b)
		}
	case field.CanInt():
		if n, err := strconv.ParseInt(raw, 10, field.Type().Bits()); err == nil {
			field.SetInt(n)
		}
	case field.CanUint():
		if n, err := strconv.ParseUint(raw, 8, field.Type().Bits()); err == nil {
			field.SetUint(n)
		}
	}
}
