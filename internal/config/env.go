package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
)

const EnvPrefix = "SURVEY_"

// EnvKey derives the environment variable name for a setting,
// e.g. "noiseFloor" becomes SURVEY_NOISE_FLOOR.
func EnvKey(name string) string {
	return EnvPrefix + strcase.ToScreamingSnake(name)
}

type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"logLevel", func(c *Config, v string) error { c.Settings.LogLevel = v; return nil }},
	{"storePath", func(c *Config, v string) error { c.Store.Path = v; return nil }},
	{"interface", func(c *Config, v string) error { c.Collector.Interface = v; return nil }},
	{"tool", func(c *Config, v string) error { c.Collector.Tool = v; return nil }},
	{"stopWord", func(c *Config, v string) error { c.Collector.StopWord = v; return nil }},
	{"noiseFloor", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Collector.NoiseFloor = n
		return nil
	}},
	{"delay", func(c *Config, v string) error {
		d, err := ParseTimeDuration(v)
		if err != nil {
			return err
		}
		c.Collector.Delay = d
		return nil
	}},
	{"tolerance", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Channels.Tolerance = f
		return nil
	}},
	{"outputDir", func(c *Config, v string) error { c.Analyzer.OutputDir = v; return nil }},
	{"theme", func(c *Config, v string) error { c.Analyzer.Theme = v; return nil }},
	{"format", func(c *Config, v string) error { c.Analyzer.Format = ImageFormat(strings.ToLower(v)); return nil }},
}

// ApplyEnv loads .env when present and overrides c with any SURVEY_* variables
func ApplyEnv(c *Config) error {
	_ = godotenv.Load(".env")

	for _, b := range envBindings {
		key := EnvKey(b.name)
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if err := b.apply(c, v); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}
