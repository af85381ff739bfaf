package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.AuthTimeout != 7*time.Second {
		t.Errorf("AuthTimeout = %v, want 7s", cfg.AuthTimeout)
	}
	if cfg.PushEnabled() {
		t.Error("PushEnabled() should be false without keys")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"9090\"\ndatabasePath: /tmp/file.db\nadminEmails:\n  - a@example.com\n  - b@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("REPORTHUB_DB_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want value from file", cfg.ServerPort)
	}
	if cfg.DatabasePath != "/tmp/env.db" {
		t.Errorf("DatabasePath = %q, want env override", cfg.DatabasePath)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Errorf("AdminEmails = %v, want 2 entries", cfg.AdminEmails)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "postgres without url",
			env:  map[string]string{"REPORTHUB_DATABASE_TYPE": "postgres"},
		},
		{
			name: "unknown database",
			env:  map[string]string{"REPORTHUB_DATABASE_TYPE": "oracle"},
		},
		{
			name: "half a vapid key pair",
			env:  map[string]string{"REPORTHUB_VAPID_PUBLIC_KEY": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}
