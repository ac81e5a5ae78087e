package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
)

func TestNewPathValidator(t *testing.T) {
	if _, err := NewPathValidator(""); err == nil {
		t.Error("Expected error for empty root")
	}

	v, err := NewPathValidator("/non/existent/path")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Root() != "/non/existent/path" {
		t.Errorf("Root() = %q", v.Root())
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "scans")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	v, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{"root itself", tempDir, false},
		{"file in root", filepath.Join(tempDir, "batch.yaml"), false},
		{"subdirectory", subDir, false},
		{"traversal", filepath.Join(subDir, "..", "..", "etc", "passwd"), true},
		{"sibling with common prefix", tempDir + "-other", true},
		{"outside", "/etc/passwd", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantError && err == nil {
				t.Errorf("Expected error for %s", tt.path)
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.path, err)
			}
			if err != nil && !errors.Is(err, reviewerrors.ErrSecurity) {
				t.Errorf("Expected security error, got %v", err)
			}
		})
	}
}

func TestPathValidator_Symlink(t *testing.T) {
	tempDir := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(tempDir, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	if err := v.ValidatePath(link); err == nil {
		t.Error("Expected symlink leaving the root to be rejected")
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tempDir := t.TempDir()
	v, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	got, err := v.Resolve("batch.yaml")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want, _ := filepath.Abs(filepath.Join(tempDir, "batch.yaml"))
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	if _, err := v.Resolve("../outside.yaml"); err == nil {
		t.Error("Expected error for relative traversal")
	}
	if _, err := v.Resolve("\x00"); err == nil {
		t.Error("Expected error for NUL-only path")
	}
}
