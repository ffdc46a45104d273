package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("unexpected default listen addr: %s", cfg.ListenAddr)
	}
	if cfg.IndexFile != "index.html" {
		t.Errorf("unexpected default index file: %s", cfg.IndexFile)
	}
	if cfg.MaxConnections != 1000 {
		t.Errorf("unexpected default max connections: %d", cfg.MaxConnections)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WSFORGE_LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("WSFORGE_MAX_CONNECTIONS", "42")

	cfg := FromEnv()
	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("expected overridden listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.MaxConnections != 42 {
		t.Errorf("expected overridden max connections, got %d", cfg.MaxConnections)
	}
	if cfg.IndexFile != "index.html" {
		t.Errorf("expected default index file when unset, got %s", cfg.IndexFile)
	}
}

func TestFromEnvMalformedFallsBackToDefault(t *testing.T) {
	t.Setenv("WSFORGE_MAX_CONNECTIONS", "not-a-number")

	cfg := FromEnv()
	if cfg.MaxConnections != 1000 {
		t.Errorf("expected default max connections on malformed value, got %d", cfg.MaxConnections)
	}
}
