package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppName != "netreq" {
		t.Fatalf("unexpected app name %q", cfg.AppName)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if cfg.ApplyParameters {
		t.Fatalf("parameters must not be applied by default")
	}
	if !cfg.DetectContentType {
		t.Fatalf("content type detection should default on")
	}
	if cfg.HistoryTTL != 7*24*time.Hour {
		t.Fatalf("unexpected history ttl %v", cfg.HistoryTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("APPLY_PARAMETERS", "true")
	t.Setenv("HISTORY_TYPE", "none")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if !cfg.ApplyParameters {
		t.Fatalf("expected apply_parameters from env")
	}
	if cfg.HistoryType != "none" {
		t.Fatalf("unexpected history type %q", cfg.HistoryType)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("HISTORY_TTL_SECONDS", "0")
	if _, err := load(viper.New()); err == nil {
		t.Fatalf("expected error for zero history ttl")
	}
}
