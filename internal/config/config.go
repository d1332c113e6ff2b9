// Package config loads fsmrun settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidLogFormat is returned for FSM_LOG_FORMAT values other than text or json
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// RunConfig configures the fsmrun command
type RunConfig struct {
	SpecFile         string        `env:"FSM_SPEC_FILE"`
	LogLevel         slog.Level    `env:"FSM_LOG_LEVEL" envDefault:"INFO"`
	LogFormat        string        `env:"FSM_LOG_FORMAT" envDefault:"text"`
	IgnoreUnexpected bool          `env:"FSM_IGNORE_UNEXPECTED" envDefault:"false"`
	AwaitTimeout     time.Duration `env:"FSM_AWAIT_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file (missing files are fine) and parses the
// environment into a RunConfig.
func Load(files ...string) (RunConfig, error) {
	// The .env file is optional
	_ = godotenv.Load(files...)
	return Parse()
}

// Parse parses the current environment into a RunConfig
func Parse() (RunConfig, error) {
	var cfg RunConfig
	if err := env.Parse(&cfg); err != nil {
		return RunConfig{}, errors.Join(ErrParsingConfig, err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return RunConfig{}, fmt.Errorf("%w %q: must be text or json", ErrInvalidLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}
