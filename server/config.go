package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr         string `yaml:"addr"`
	DatabaseURL  string `yaml:"database_url"`
	TemplateGlob string `yaml:"template_glob"`
	SessionHours int    `yaml:"session_hours"`
}

// loadConfig layers defaults, then an optional yaml file, then flags,
// with DATABASE_URL from the environment as the usual override.
func loadConfig(args []string) (*Config, error) {
	cfg := &Config{
		Addr:         ":8080",
		TemplateGlob: "templates/*.html",
		SessionHours: 24,
	}

	flags := pflag.NewFlagSet("blog-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a yaml config file")
	addr := flags.String("addr", cfg.Addr, "listen address")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if flags.Changed("addr") {
		cfg.Addr = *addr
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		cfg.DatabaseURL = env
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("no database URL: set DATABASE_URL or database_url in the config file")
	}
	if cfg.SessionHours < 1 {
		cfg.SessionHours = 24
	}
	return cfg, nil
}
