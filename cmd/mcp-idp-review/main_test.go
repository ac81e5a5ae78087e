package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/config"
	"github.com/a3tai/mcp-idp-review/internal/history"
)

func TestPrintVersion(t *testing.T) {
	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	printVersion()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	output := buf.String()

	expectedStrings := []string{
		"MCP IDP Review",
		"Version: " + version,
		"Build Time: " + buildTime,
		"Git Commit: " + gitCommit,
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, got: %s", expected, output)
		}
	}
}

func TestNewService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.HistoryMode = "branching"

	service, err := newService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newService() unexpected error: %v", err)
	}
	if service.Sessions().Len() != 0 {
		t.Error("new service should have no sessions")
	}
	if cfg.History() != history.Branching {
		t.Errorf("History() = %v, want branching", cfg.History())
	}

	cfg.Directory = ""
	if _, err := newService(cfg, zap.NewNop()); err == nil {
		t.Error("newService() expected error for empty directory")
	}
}

func TestConfigModeLogic(t *testing.T) {
	tests := []struct {
		mode       string
		wantServer bool
		wantStdio  bool
	}{
		{"server", true, false},
		{"stdio", false, true},
		{"invalid", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &config.Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.wantServer {
				t.Errorf("IsServerMode() = %v, want %v", got, tt.wantServer)
			}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
		})
	}
}
