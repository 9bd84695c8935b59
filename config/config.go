// Package config loads agent configuration from the process environment.
// A .env file in the working directory is merged in first when present,
// matching local-development convention; real environment variables always
// win over file entries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything a run needs: credentials, the MCP server to
// reach, loop tuning, and logging knobs.
type Config struct {
	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string `env:"OPENAI_API_KEY,required,notEmpty"`

	// MCPServer locates the forms MCP server: a stdio:// command line, an
	// sse:// or http(s):// endpoint, or a bare command name.
	MCPServer string `env:"FORMS_MCP_SERVER,required,notEmpty"`

	// Model is the chat model completions are requested from.
	Model string `env:"FORMLOOP_MODEL" envDefault:"gpt-4o"`

	// Provider selects the completion backend.
	Provider string `env:"FORMLOOP_PROVIDER" envDefault:"openai"`

	// MaxIterations bounds how many completion rounds a run may use before
	// the loop forces a final answer.
	MaxIterations int `env:"FORMLOOP_MAX_ITERATIONS" envDefault:"10"`

	// Temperature is passed through on every completion request.
	Temperature float64 `env:"FORMLOOP_TEMPERATURE" envDefault:"0.2"`

	// BaseURL overrides the OpenAI endpoint, for gateways and proxies.
	BaseURL string `env:"FORMLOOP_BASE_URL"`

	// LogLevel names the minimum slog level: debug, info, warn, or error.
	LogLevel string `env:"FORMLOOP_LOG_LEVEL" envDefault:"info"`

	// LogFormat selects log output: "text" for colorized console output,
	// "json" for structured lines.
	LogFormat string `env:"FORMLOOP_LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment. A missing .env file is
// fine; the process environment is authoritative either way.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("config: FORMLOOP_MAX_ITERATIONS must be at least 1, got %d", c.MaxIterations)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: FORMLOOP_TEMPERATURE must be between 0 and 2, got %g", c.Temperature)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: FORMLOOP_LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog's scale. Unknown
// names fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
