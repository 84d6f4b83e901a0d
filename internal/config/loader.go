// Package config loads process configuration from the environment, plus an
// optional YAML file that seeds the registry's calendars at startup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/calendar-planner/internal/logging"
)

// Config captures environment driven configuration values for the planner.
type Config struct {
	LogLevel        slog.Level
	DefaultTimezone string
	CalendarsFile   string
}

// Load parses configuration values from the current process environment.
// Optional fields fall back to defaults; invalid values are accumulated and
// reported together.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:        slog.LevelInfo,
		DefaultTimezone: "UTC",
	}

	invalid := make([]string, 0, 1)

	if levelValue := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "PLANNER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if tz := strings.TrimSpace(os.Getenv("PLANNER_DEFAULT_TIMEZONE")); tz != "" {
		cfg.DefaultTimezone = tz
	}

	if path := strings.TrimSpace(os.Getenv("PLANNER_CALENDARS_FILE")); path != "" {
		cfg.CalendarsFile = path
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// CalendarSeed describes one calendar to create at startup.
type CalendarSeed struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// Seed is the parsed calendars file.
type Seed struct {
	Calendars []CalendarSeed `yaml:"calendars"`
	Active    string         `yaml:"active"`
}

// LoadSeed reads and parses the calendars file at path.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read calendars file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse calendars file: %w", err)
	}
	for i, cal := range seed.Calendars {
		if strings.TrimSpace(cal.Name) == "" {
			return Seed{}, fmt.Errorf("calendars file: entry %d has no name", i)
		}
		if strings.TrimSpace(cal.Timezone) == "" {
			return Seed{}, fmt.Errorf("calendars file: calendar %q has no timezone", cal.Name)
		}
	}
	return seed, nil
}
