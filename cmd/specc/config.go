package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config captures the inputs of every command after merging defaults,
// config file values and flag overrides, in that order.
type Config struct {
	ConfigPath string

	Manifest string
	Host     string
	BasePath string

	// Format is the document flavor: "swagger" or "openapi3".
	Format string
	// OutputFormat is the encoding: "json" or "yaml".
	OutputFormat string
	Out          string

	Addr        string
	DocsPath    string
	DocsUI      string
	CORSOrigins []string

	LogLevel string
	Verbose  bool
}

func defaultConfig() Config {
	return Config{
		Format:       "swagger",
		OutputFormat: "json",
		Addr:         ":8080",
		DocsPath:     "/docs",
		DocsUI:       "swagger-ui",
		LogLevel:     "warn",
	}
}

func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(cmd.Name()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// stringFlags maps flag names to the config fields they override. Commands
// only define the flags they use.
func stringFlags(cfg *Config) map[string]*string {
	return map[string]*string{
		"manifest":      &cfg.Manifest,
		"host":          &cfg.Host,
		"base-path":     &cfg.BasePath,
		"format":        &cfg.Format,
		"output-format": &cfg.OutputFormat,
		"out":           &cfg.Out,
		"addr":          &cfg.Addr,
		"docs-path":     &cfg.DocsPath,
		"docs-ui":       &cfg.DocsUI,
		"log-level":     &cfg.LogLevel,
	}
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	for name, field := range stringFlags(cfg) {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*field = strings.TrimSpace(value)
	}

	if flags.Lookup("cors-origins") != nil && flags.Changed("cors-origins") {
		value, err := flags.GetStringSlice("cors-origins")
		if err != nil {
			return err
		}
		cfg.CORSOrigins = value
	}

	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func (c *Config) normalize() {
	c.Manifest = strings.TrimSpace(c.Manifest)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	c.DocsUI = strings.ToLower(strings.TrimSpace(c.DocsUI))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Verbose {
		c.LogLevel = "debug"
	}
	if c.Out == "-" {
		c.Out = ""
	}
	c.CORSOrigins = sanitizeList(c.CORSOrigins)
}

func (c *Config) validate(command string) error {
	if c.Manifest == "" {
		return newUsageError(fmt.Sprintf("%s: --manifest is required (set via flag or config file)", command))
	}

	switch c.Format {
	case "swagger", "openapi3":
	default:
		return newUsageError(fmt.Sprintf("%s: unsupported --format %q (allowed: swagger, openapi3)", command, c.Format))
	}

	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return newUsageError(fmt.Sprintf("%s: unsupported --output-format %q (allowed: json, yaml)", command, c.OutputFormat))
	}

	switch c.DocsUI {
	case "swagger-ui", "redoc", "rapidoc":
	default:
		return newUsageError(fmt.Sprintf("%s: unsupported --docs-ui %q (allowed: swagger-ui, redoc, rapidoc)", command, c.DocsUI))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return newUsageError(fmt.Sprintf("%s: invalid --log-level %q", command, c.LogLevel))
	}
	return nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	fields := make(map[string]*string)
	for name, field := range stringFlags(cfg) {
		fields[normalizeKey(name)] = field
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
			continue
		case "corsorigins":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.CORSOrigins = list
			continue
		}

		field, ok := fields[normalized]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		str, err := valueAsString(value)
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
		*field = str
	}
	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Split(val, ","), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			items = append(items, str)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

// sanitizeList trims entries and drops empty and duplicate ones.
func sanitizeList(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean value %q", val)
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
