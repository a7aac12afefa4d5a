package config_test

import (
	"testing"
	"time"

	"github.com/anuj1535-hue/superpower-gpt/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.DataDir == "" {
		t.Error("DataDir is empty")
	}
	if cfg.DebounceInterval != 500*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 500ms", cfg.DebounceInterval)
	}
	if cfg.ReadyPollBudget < 1 {
		t.Errorf("ReadyPollBudget = %d, want >= 1", cfg.ReadyPollBudget)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SUPERPOWER_DATA_DIR", "/tmp/superpower-test")
	t.Setenv("SUPERPOWER_DEBOUNCE_MS", "50")
	t.Setenv("SUPERPOWER_READY_POLL_MS", "100")
	t.Setenv("SUPERPOWER_READY_BUDGET", "3")
	t.Setenv("SUPERPOWER_LOG_LEVEL", "debug")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DataDir != "/tmp/superpower-test" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.DebounceInterval != 50*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 50ms", cfg.DebounceInterval)
	}
	if cfg.ReadyPollInterval != 100*time.Millisecond {
		t.Errorf("ReadyPollInterval = %v, want 100ms", cfg.ReadyPollInterval)
	}
	if cfg.ReadyPollBudget != 3 {
		t.Errorf("ReadyPollBudget = %d, want 3", cfg.ReadyPollBudget)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFromEnv_InvalidDebounce(t *testing.T) {
	t.Setenv("SUPERPOWER_DEBOUNCE_MS", "not-a-number")

	if _, err := config.FromEnv(); err == nil {
		t.Error("FromEnv accepted an invalid debounce value")
	}
}
