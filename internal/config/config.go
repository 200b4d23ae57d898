// Package config loads run configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Seed        int64  `yaml:"seed"`
	Years       int    `yaml:"years"`
	StartYear   int    `yaml:"start_year"`
	DaysPerTick int    `yaml:"days_per_tick"`
	LogLevel    string `yaml:"log_level"`
	Database    string `yaml:"database"`
	Export      string `yaml:"export"`

	// Characters older than lifespan plus this many years always die.
	MaxYearsPastLifespan float64 `yaml:"max_years_past_lifespan"`

	Settlement SettlementConfig       `yaml:"settlement"`
	Events     map[string]EventConfig `yaml:"events"`
}

type SettlementConfig struct {
	Name              string  `yaml:"name"`
	Radius            int     `yaml:"radius"`
	SeedFamilies      int     `yaml:"seed_families"`
	ResidentialSlots  int     `yaml:"residential_slots"`
	BusinessSlots     int     `yaml:"business_slots"`
	MoveInChance      float64 `yaml:"move_in_chance"`
	NewBusinessChance float64 `yaml:"new_business_chance"`
}

// EventConfig overrides a built-in life event. Nil fields keep the default.
type EventConfig struct {
	Enabled     *bool    `yaml:"enabled"`
	Probability *float64 `yaml:"probability"`
	Threshold   *float64 `yaml:"threshold"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Years:                50,
		StartYear:            1839,
		DaysPerTick:          30,
		LogLevel:             "info",
		MaxYearsPastLifespan: 10,
		Settlement: SettlementConfig{
			Name:              "Hamlet",
			Radius:            1,
			SeedFamilies:      6,
			ResidentialSlots:  4,
			BusinessSlots:     2,
			MoveInChance:      0.4,
			NewBusinessChance: 0.2,
		},
		Events: map[string]EventConfig{},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Events == nil {
		cfg.Events = map[string]EventConfig{}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration built in code.
func (c *Config) Validate() error { return validate(c) }

func validate(cfg *Config) error {
	if cfg.Years < 0 {
		return fmt.Errorf("years must not be negative: %d", cfg.Years)
	}
	if cfg.DaysPerTick < 1 {
		return fmt.Errorf("days_per_tick must be at least 1: %d", cfg.DaysPerTick)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.MaxYearsPastLifespan < 0 {
		return fmt.Errorf("max_years_past_lifespan must not be negative")
	}

	s := cfg.Settlement
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("settlement name is required")
	}
	if s.Radius < 0 || s.Radius > 6 {
		return fmt.Errorf("settlement radius must be between 0 and 6: %d", s.Radius)
	}
	if s.SeedFamilies < 0 {
		return fmt.Errorf("seed_families must not be negative")
	}
	if s.ResidentialSlots < 1 || s.BusinessSlots < 0 {
		return fmt.Errorf("district slots out of range: residential=%d business=%d", s.ResidentialSlots, s.BusinessSlots)
	}
	if !unit(s.MoveInChance) || !unit(s.NewBusinessChance) {
		return fmt.Errorf("settlement chances must be within [0, 1]")
	}

	for name, ev := range cfg.Events {
		if ev.Probability != nil && !unit(*ev.Probability) {
			return fmt.Errorf("event %s: probability must be within [0, 1]", name)
		}
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// ParseLevel maps a config log level onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// Event returns the override for a named event.
func (c *Config) Event(name string) EventConfig {
	return c.Events[name]
}

// EventEnabled reports whether a named event should run.
func (c *Config) EventEnabled(name string) bool {
	ev := c.Events[name]
	return ev.Enabled == nil || *ev.Enabled
}

// EventProbability returns the configured probability or def.
func (c *Config) EventProbability(name string, def float64) float64 {
	if ev := c.Events[name]; ev.Probability != nil {
		return *ev.Probability
	}
	return def
}

// EventThreshold returns the configured threshold or def.
func (c *Config) EventThreshold(name string, def float64) float64 {
	if ev := c.Events[name]; ev.Threshold != nil {
		return *ev.Threshold
	}
	return def
}
