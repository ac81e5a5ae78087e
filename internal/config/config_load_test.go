package config

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envVars = []string{
	"MCP_IDP_MODE", "MCP_IDP_HOST", "MCP_IDP_PORT", "MCP_IDP_DIR", "MCP_IDP_LOGLEVEL",
	"MCP_IDP_MAXFILESIZE", "MCP_IDP_HISTORY", "MCP_IDP_HISTORYLIMIT", "MCP_IDP_TYPEAHEADLIMIT",
}

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// withArgs runs LoadFromFlags with args and a clean environment, restoring both afterwards
func withArgs(t *testing.T, args []string, env map[string]string) (*Config, error) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
	})

	for _, name := range envVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	for name, value := range env {
		t.Setenv(name, value)
	}

	os.Args = args
	resetFlags()
	return LoadFromFlags()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	cfg, err := withArgs(t, []string{"mcp-idp-review"}, nil)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.HistoryMode != "linear" {
		t.Errorf("LoadFromFlags() HistoryMode = %v, want %v", cfg.HistoryMode, "linear")
	}
	if cfg.Directory == "" {
		t.Error("LoadFromFlags() Directory should not be empty")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode with custom host and port",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
					t.Errorf("LoadFromFlags() = %s", cfg)
				}
			},
		},
		{
			name: "debug logging",
			args: []string{"--loglevel=debug"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.IsDebug() {
					t.Errorf("LoadFromFlags() LogLevel = %v, want debug", cfg.LogLevel)
				}
			},
		},
		{
			name: "custom max file size",
			args: []string{"--maxfilesize=50000000"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxFileSize != 50000000 {
					t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 50000000)
				}
			},
		},
		{
			name: "branching history without limit",
			args: []string{"--history=branching", "--historylimit=0", "--typeaheadlimit=3"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.HistoryMode != "branching" || cfg.HistoryLimit != 0 || cfg.TypeaheadLimit != 3 {
					t.Errorf("LoadFromFlags() = %s", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"mcp-idp-review", "--dir=" + t.TempDir()}, tt.args...)
			cfg, err := withArgs(t, args, nil)
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	cfg, err := withArgs(t, []string{"mcp-idp-review"}, map[string]string{
		"MCP_IDP_MODE":           "server",
		"MCP_IDP_HOST":           "192.168.1.1",
		"MCP_IDP_PORT":           "3000",
		"MCP_IDP_DIR":            dir,
		"MCP_IDP_LOGLEVEL":       "warn",
		"MCP_IDP_MAXFILESIZE":    "200000000",
		"MCP_IDP_HISTORY":        "branching",
		"MCP_IDP_HISTORYLIMIT":   "25",
		"MCP_IDP_TYPEAHEADLIMIT": "4",
	})
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "server")
	}
	if cfg.Host != "192.168.1.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "192.168.1.1")
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.Directory != dir {
		t.Errorf("LoadFromFlags() Directory = %v, want %v", cfg.Directory, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 200000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 200000000)
	}
	if cfg.HistoryMode != "branching" || cfg.HistoryLimit != 25 {
		t.Errorf("LoadFromFlags() history = %s/%d, want branching/25", cfg.HistoryMode, cfg.HistoryLimit)
	}
	if cfg.TypeaheadLimit != 4 {
		t.Errorf("LoadFromFlags() TypeaheadLimit = %v, want %v", cfg.TypeaheadLimit, 4)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	cfg, err := withArgs(t,
		[]string{"mcp-idp-review", "--mode=stdio", "--host=localhost", "--history=linear", "--dir=" + t.TempDir()},
		map[string]string{
			"MCP_IDP_MODE":    "server",
			"MCP_IDP_HOST":    "192.168.1.1",
			"MCP_IDP_HISTORY": "branching",
		})
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, "stdio")
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.HistoryMode != "linear" {
		t.Errorf("LoadFromFlags() HistoryMode = %v, want %v (should override env)", cfg.HistoryMode, "linear")
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"invalid log level", []string{"--loglevel=invalid"}, "invalid log level"},
		{"invalid history mode", []string{"--history=circular"}, "unknown history mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"mcp-idp-review", "--dir=" + t.TempDir()}, tt.args...)
			_, err := withArgs(t, args, nil)
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-version", "-v"} {
		t.Run(flag, func(t *testing.T) {
			_, err := withArgs(t, []string{"mcp-idp-review", flag}, nil)
			if !errors.Is(err, ErrVersionRequested) {
				t.Errorf("LoadFromFlags() error = %v, want ErrVersionRequested", err)
			}
		})
	}
}
