package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-mdbook-typst/internal/config"
	"github.com/alnah/go-mdbook-typst/internal/logfields"
)

const envPrefix = "MDBOOK_TYPST_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without editing book.toml.
type envConfig struct {
	ConfigPath string // MDBOOK_TYPST_CONFIG: overlay file path
	Prelude    string // MDBOOK_TYPST_PRELUDE: prelude file or builtin:NAME
	Workers    int    // MDBOOK_TYPST_WORKERS: parallel chapter conversions
}

// knownEnvVars lists valid MDBOOK_TYPST_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDBOOK_TYPST_CONFIG":  true,
	"MDBOOK_TYPST_PRELUDE": true,
	"MDBOOK_TYPST_WORKERS": true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or out-of-range worker count is ignored with a warning.
func loadEnvConfig(logger *slog.Logger) *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDBOOK_TYPST_CONFIG"),
		Prelude:    os.Getenv("MDBOOK_TYPST_PRELUDE"),
	}

	if workers := os.Getenv("MDBOOK_TYPST_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err == nil && w > 0 && w <= config.MaxWorkers {
			cfg.Workers = w
		} else {
			logger.Warn("ignoring invalid MDBOOK_TYPST_WORKERS", slog.String("value", workers))
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDBOOK_TYPST_*
// variables, such as MDBOOK_TYPST_WORKER for MDBOOK_TYPST_WORKERS.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", slog.String("name", name))
		}
	}
}

// applyEnvConfig applies environment values over the host table and the
// overlay file. Flags are applied later and win over both:
// flags > env vars > overlay file > [output.typst] > defaults.
func applyEnvConfig(env *envConfig, opts *config.Options, logger *slog.Logger) {
	if env.Prelude != "" {
		opts.Prelude = env.Prelude
		// An explicit prelude reference replaces an inline prelude from
		// lower layers.
		opts.PreludeStr = ""
		logger.Debug("prelude from environment", logfields.Source(env.Prelude))
	}
	if env.Workers > 0 {
		opts.Workers = env.Workers
		logger.Debug("workers from environment", logfields.Workers(env.Workers))
	}
}
