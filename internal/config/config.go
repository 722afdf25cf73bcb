// Package config loads runtime settings from the environment (and an
// optional .env file) and holds the physics tuning presets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by the binaries.
type Config struct {
	Port         int
	DBPath       string
	TickHz       int
	BroadcastHz  int
	LogLevel     slog.Level
	LogFile      string
	CORSOrigins  []string
	RandomOrgKey string
	Audio        bool
	Tuning       Tuning
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults for
// unset variables.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:         8080,
		DBPath:       "data/ducksort.db",
		TickHz:       60,
		BroadcastHz:  30,
		LogLevel:     slog.LevelInfo,
		LogFile:      getenv("DUCKSORT_LOG_FILE"),
		RandomOrgKey: getenv("RANDOM_ORG_API_KEY"),
		Audio:        true,
	}

	var err error
	if cfg.Port, err = intVar(getenv, "DUCKSORT_PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.TickHz, err = intVar(getenv, "DUCKSORT_TICK_HZ", cfg.TickHz); err != nil {
		return Config{}, err
	}
	if cfg.BroadcastHz, err = intVar(getenv, "DUCKSORT_BROADCAST_HZ", cfg.BroadcastHz); err != nil {
		return Config{}, err
	}
	if cfg.TickHz <= 0 || cfg.BroadcastHz <= 0 {
		return Config{}, fmt.Errorf("tick and broadcast rates must be positive (%d, %d)", cfg.TickHz, cfg.BroadcastHz)
	}
	if v := getenv("DUCKSORT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("DUCKSORT_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("DUCKSORT_LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("DUCKSORT_CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}
	if v := getenv("DUCKSORT_AUDIO"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("DUCKSORT_AUDIO: %w", err)
		}
		cfg.Audio = on
	}

	cfg.Tuning, err = TuningByName(getenv("DUCKSORT_TUNING"))
	if err != nil {
		return Config{}, fmt.Errorf("DUCKSORT_TUNING: %w", err)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return Config{}, fmt.Errorf("tuning %s: %w", cfg.Tuning.Name, err)
	}

	return cfg, nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
