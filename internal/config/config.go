package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Addr          string `yaml:"addr"`
	Mode          string `yaml:"mode"`
	UpstreamURL   string `yaml:"upstream_url"`
	AllowedOrigin string `yaml:"allowed_origin"`
	AutoStart     bool   `yaml:"auto_start"`
	HistoryCap    int    `yaml:"history_cap"`
	Seed          int64  `yaml:"seed"`
	Debug         bool   `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		Mode:          domain.ModeSimulation,
		AllowedOrigin: "*",
		AutoStart:     true,
		HistoryCap:    100000,
	}
}

// Load populates Config from, in increasing precedence: defaults, an
// optional YAML file (path in INTELLIGUARD_CONFIG), environment variables
// and command line flags.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("INTELLIGUARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Environment overrides the file
	cfg.Addr = getEnv("INTELLIGUARD_ADDR", cfg.Addr)
	cfg.Mode = getEnv("INTELLIGUARD_MODE", cfg.Mode)
	cfg.UpstreamURL = getEnv("INTELLIGUARD_UPSTREAM_URL", cfg.UpstreamURL)
	cfg.AllowedOrigin = getEnv("INTELLIGUARD_ORIGIN", cfg.AllowedOrigin)
	cfg.AutoStart = getEnvBool("INTELLIGUARD_AUTOSTART", cfg.AutoStart)
	cfg.HistoryCap = getEnvInt("INTELLIGUARD_HISTORY_CAP", cfg.HistoryCap)
	cfg.Seed = int64(getEnvInt("INTELLIGUARD_SEED", int(cfg.Seed)))
	cfg.Debug = getEnvBool("INTELLIGUARD_DEBUG", cfg.Debug)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Ingress mode: simulation or live")
	flag.StringVar(&cfg.UpstreamURL, "upstream", cfg.UpstreamURL, "Base URL of the live upstream backend")
	flag.StringVar(&cfg.AllowedOrigin, "origin", cfg.AllowedOrigin, "Allowed CORS origin")
	flag.BoolVar(&cfg.AutoStart, "autostart", cfg.AutoStart, "Start streaming on boot")
	flag.IntVar(&cfg.HistoryCap, "history-cap", cfg.HistoryCap, "Max records retained for windowed reports")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Simulation seed (0 seeds from the clock)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch c.Mode {
	case domain.ModeSimulation, domain.ModeLive:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, domain.ModeSimulation, domain.ModeLive)
	}
	if c.Mode == domain.ModeLive && c.UpstreamURL == "" {
		return fmt.Errorf("live mode requires an upstream URL")
	}
	if c.HistoryCap < 0 {
		return fmt.Errorf("history-cap must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
