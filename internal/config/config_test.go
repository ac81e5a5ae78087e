package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-idp-review/internal/history"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-idp-review" {
		t.Errorf("Expected default server name to be 'mcp-idp-review', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.HistoryMode != "linear" {
		t.Errorf("Expected default history mode to be 'linear', got '%s'", cfg.HistoryMode)
	}
	if cfg.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("Expected default history limit to be %d, got %d", DefaultHistoryLimit, cfg.HistoryLimit)
	}
	if cfg.TypeaheadLimit != DefaultTypeaheadLimit {
		t.Errorf("Expected default typeahead limit to be %d, got %d", DefaultTypeaheadLimit, cfg.TypeaheadLimit)
	}

	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func validConfig(dir string) *Config {
	cfg := DefaultConfig()
	cfg.Directory = dir
	return cfg
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid config - stdio mode", modify: func(*Config) {}},
		{name: "valid config - server mode", modify: func(c *Config) { c.Mode = "server" }},
		{name: "valid config - branching history", modify: func(c *Config) { c.HistoryMode = "branching"; c.HistoryLimit = 0 }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{name: "invalid port - too low (server mode)", modify: func(c *Config) { c.Mode = "server"; c.Port = 0 }, wantErr: "port"},
		{name: "invalid port - too high (server mode)", modify: func(c *Config) { c.Mode = "server"; c.Port = 70000 }, wantErr: "port"},
		{name: "invalid port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "empty directory", modify: func(c *Config) { c.Directory = "" }, wantErr: "directory cannot be empty"},
		{name: "invalid log level", modify: func(c *Config) { c.LogLevel = "invalid" }, wantErr: "invalid log level"},
		{name: "invalid max file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "invalid history mode", modify: func(c *Config) { c.HistoryMode = "circular" }, wantErr: "history mode"},
		{name: "negative history limit", modify: func(c *Config) { c.HistoryLimit = -1 }, wantErr: "history limit"},
		{name: "zero typeahead limit", modify: func(c *Config) { c.TypeaheadLimit = 0 }, wantErr: "typeahead limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(dir)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "batches", "incoming")
	cfg := validConfig(dir)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory", dir)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.Host = "0.0.0.0"
	cfg.Port = 9090

	if got := cfg.Address(); got != "0.0.0.0:9090" {
		t.Errorf("Address() = %s, want 0.0.0.0:9090", got)
	}
	if cfg.IsDebug() {
		t.Error("IsDebug() = true for info level")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug() = false for debug level")
	}
	if !cfg.IsStdioMode() || cfg.IsServerMode() {
		t.Error("Expected stdio mode")
	}
	cfg.Mode = ModeServer
	if cfg.IsStdioMode() || !cfg.IsServerMode() {
		t.Error("Expected server mode")
	}

	cfg.HistoryMode = "branching"
	if cfg.History() != history.Branching {
		t.Errorf("History() = %v, want branching", cfg.History())
	}

	s := cfg.String()
	for _, want := range []string{"Mode: server", "Port: 9090", "History: branching", "TypeaheadLimit: 10"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %s, missing %q", s, want)
		}
	}
}
