// Package config loads service settings from an optional YAML file with
// environment variable overrides. Secrets (webhook secret, Clerk API key,
// database URL) stay in the environment and are never defaulted.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/imaginify/user-service/util"
)

// Config represents the operational settings of the service.
type Config struct {
	Port           int      `yaml:"port"`
	AllowOrigins   []string `yaml:"allow_origins"`
	DefaultCredits int      `yaml:"default_credits"`
}

// Defaults returns the built-in settings used when no file and no env
// overrides are present.
func Defaults() Config {
	return Config{
		Port:           8080,
		AllowOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		DefaultCredits: 10,
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and then applies env overrides on top.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if util.IsNotEmpty(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse YAML: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment win over file values.
func (c *Config) applyEnv() {
	c.Port = util.GetEnvIntDefault("PORT", c.Port)
	c.DefaultCredits = util.GetEnvIntDefault("DEFAULT_CREDITS", c.DefaultCredits)
	if origins := util.GetEnvDefault("ALLOW_ORIGINS", ""); util.IsNotEmpty(origins) {
		c.AllowOrigins = splitAndTrim(origins)
	}
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
