// Package config holds runtime configuration for the store engine and its
// transports. Values come from built-in defaults overlaid with SUPERPOWER_*
// environment variables (a .env file is honored when present).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tunables for one process.
type Config struct {
	// DataDir is where the SQLite snapshot database lives.
	DataDir string
	// DebounceInterval is the quiet period before a mutated snapshot is
	// written to durable storage.
	DebounceInterval time.Duration
	// ReadyPollInterval and ReadyPollBudget bound how long the dispatch
	// gateway waits for store hydration before failing a request.
	ReadyPollInterval time.Duration
	ReadyPollBudget   int
	// BridgeAddr is the listen address for the WebSocket bridge.
	BridgeAddr string
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:           filepath.Join(home, ".superpower"),
		DebounceInterval:  500 * time.Millisecond,
		ReadyPollInterval: 250 * time.Millisecond,
		ReadyPollBudget:   10,
		BridgeAddr:        "127.0.0.1:8787",
		LogLevel:          "info",
	}
}

// FromEnv returns DefaultConfig overlaid with environment variables.
// A missing .env file is not an error.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_BRIDGE_ADDR")); v != "" {
		cfg.BridgeAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_DEBOUNCE_MS")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return cfg, fmt.Errorf("config: invalid SUPERPOWER_DEBOUNCE_MS %q", v)
		}
		cfg.DebounceInterval = time.Duration(ms) * time.Millisecond
	}
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_READY_POLL_MS")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 1 {
			return cfg, fmt.Errorf("config: invalid SUPERPOWER_READY_POLL_MS %q", v)
		}
		cfg.ReadyPollInterval = time.Duration(ms) * time.Millisecond
	}
	if v := strings.TrimSpace(os.Getenv("SUPERPOWER_READY_BUDGET")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("config: invalid SUPERPOWER_READY_BUDGET %q", v)
		}
		cfg.ReadyPollBudget = n
	}
	return cfg, nil
}
