package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration built from struct tag defaults only.
func Default() *Config {
	cfg := &Config{}

	// Tag defaults are constants checked by tests; they cannot fail to parse.
	_ = applyTags(reflect.ValueOf(cfg).Elem(), false, nil)

	return cfg
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment. It does not validate, so that
// flags can still be applied.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config load: parsing %s: %w", path, err)
		}
	}

	if err := applyTags(reflect.ValueOf(cfg).Elem(), true, lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

// applyTags walks struct fields. Without env it sets tag defaults; with env
// it overrides fields whose variable is set and non-empty.
func applyTags(v reflect.Value, env bool, lookup func(string) (string, bool)) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := applyTags(fieldVal, env, lookup); err != nil {
				return err
			}

			continue
		}

		envName := field.Tag.Get("env")
		value := field.Tag.Get("default")

		if env {
			value = ""

			for _, name := range []string{envName, field.Tag.Get("envAlt")} {
				if name == "" {
					continue
				}

				if s, ok := lookup(name); ok && s != "" {
					value = s
					break
				}
			}
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}

		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}

		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))

		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}

		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is usable.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, "output dir is required")
	}

	if strings.TrimSpace(c.Output.SQLPrefix) == "" {
		errs = append(errs, "sql prefix is required")
	}

	switch strings.ToLower(c.Output.ManifestFormat) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Sprintf("manifest format (%q) must be one of: json, yaml", c.Output.ManifestFormat))
	}

	if c.Database.DSN != "" && strings.TrimSpace(c.Database.Table) == "" {
		errs = append(errs, "mapping table is required with a database DSN")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("log level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("log format (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database DSN is masked.
func (c *Config) String() string {
	dsn := ""
	if c.Database.DSN != "" {
		dsn = "[MASKED]"
	}

	return fmt.Sprintf("Config{Output: {Dir: %q, Format: %q, ByReference: %v}, Debug: {Dir: %q}, Database: {DSN: %s, Table: %q}, Logging: {Level: %q, Format: %q}}",
		c.Output.Dir, c.Output.ManifestFormat, c.Output.SQLByReference, c.Debug.Dir,
		dsn, c.Database.Table, c.Logging.Level, c.Logging.Format)
}
