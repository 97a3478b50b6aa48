package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DiscoveryTimeout != 8*time.Second {
		t.Errorf("DiscoveryTimeout = %v, want 8s", cfg.DiscoveryTimeout)
	}
	if cfg.FallbackEntryField != "entry.1795297917" {
		t.Errorf("FallbackEntryField = %q, want entry.1795297917", cfg.FallbackEntryField)
	}
	if !cfg.ProxyChainEnabled {
		t.Error("expected ProxyChainEnabled default true")
	}
	if cfg.LineConfigured() {
		t.Error("expected LineConfigured false without credentials")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DISCOVERY_TIMEOUT", "3s")
	t.Setenv("PROXY_CHAIN_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.DiscoveryTimeout != 3*time.Second {
		t.Errorf("DiscoveryTimeout = %v, want 3s", cfg.DiscoveryTimeout)
	}
	if cfg.ProxyChainEnabled {
		t.Error("expected ProxyChainEnabled false")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("len(CORSOrigins) = %d, want 2", len(cfg.CORSOrigins))
	}
}

func TestLoad_NotifyEnabledRequiresCredentials(t *testing.T) {
	t.Setenv("LINE_NOTIFY_ENABLED", "true")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("LINE_CHANNEL_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when notify is enabled without credentials")
	}
}

func TestLoad_RejectsMalformedFallbackField(t *testing.T) {
	t.Setenv("FALLBACK_ENTRY_FIELD", "1795297917")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for fallback field without entry. prefix")
	}
}

func TestLineConfigured(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.LineConfigured() {
		t.Error("expected LineConfigured true with both credentials")
	}
}
