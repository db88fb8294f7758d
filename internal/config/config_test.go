package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KIDSCOIN_API_URL", "KIDSCOIN_LIVE_URL", "KIDSCOIN_DB_PATH", "KIDSCOIN_FAMILY_NAMESPACE",
		"KIDSCOIN_PASSPHRASE", "KIDSCOIN_HTTP_TIMEOUT", "KIDSCOIN_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.LiveURL != "ws://localhost:8080/api/ws" {
		t.Errorf("LiveURL = %q", cfg.LiveURL)
	}
	if cfg.DBPath != "kidscoin.db" || cfg.FamilyNamespace != "@kidscoin" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIDSCOIN_API_URL", "https://api.kidscoin.app/v1/")
	t.Setenv("KIDSCOIN_HTTP_TIMEOUT", "3s")
	t.Setenv("KIDSCOIN_PASSPHRASE", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://api.kidscoin.app/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.LiveURL != "wss://api.kidscoin.app/v1/ws" {
		t.Errorf("LiveURL = %q", cfg.LiveURL)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.Passphrase != "secret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExplicitLiveURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIDSCOIN_LIVE_URL", "ws://events.local/stream")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LiveURL != "ws://events.local/stream" {
		t.Errorf("LiveURL = %q", cfg.LiveURL)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"KIDSCOIN_HTTP_TIMEOUT", "soon"},
		{"KIDSCOIN_HTTP_TIMEOUT", "-1s"},
		{"KIDSCOIN_API_URL", "ftp://example.com"},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv(tt.key, tt.value)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%q: expected error", tt.key, tt.value)
		}
	}
}
