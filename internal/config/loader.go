package config

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "VOLLEY_"
	EnvFile   = "VOLLEY_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. struct defaults (New)
//  2. YAML file if VOLLEY_CONFIG is set
//  3. env (prefix VOLLEY_), e.g. VOLLEY_MIN_PEAK_SPEED=0.6
func Load(_ context.Context) (*Config, error) {
	cfg := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// VOLLEY_QUEUE_SIZE -> queue_size; underscores are kept to match the
	// flat koanf tags. VOLLEY_CONFIG itself is not a config key.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvFile {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
