// Package security keeps file access of the review server inside its working directory.
package security

import (
	"os"
	"path/filepath"
	"strings"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
)

// PathValidator confines paths to a root directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for root. The directory does not have to exist
// yet; paths are only checked against it once it does.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeSecurity, "root directory cannot be empty")
	}
	return &PathValidator{root: root}, nil
}

// Root returns the configured root directory
func (v *PathValidator) Root() string {
	return v.root
}

func (v *PathValidator) rootMissing() bool {
	_, err := os.Stat(v.root)
	return os.IsNotExist(err)
}

// IsWithinRoot reports whether path, after cleaning and resolving symlinks, is the root
// directory or below it
func (v *PathValidator) IsWithinRoot(path string) (bool, error) {
	if v.rootMissing() {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, reviewerrors.Wrap(reviewerrors.ErrorTypeSecurity, "failed to resolve path", err)
	}
	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return false, reviewerrors.Wrap(reviewerrors.ErrorTypeSecurity, "failed to resolve root directory", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanRoot := filepath.Clean(absRoot)

	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	}
	realRoot := cleanRoot
	if resolved, err := filepath.EvalSymlinks(cleanRoot); err == nil {
		realRoot = resolved
	}

	within := func(p string) bool {
		for _, dir := range []string{cleanRoot, realRoot} {
			if p == dir || strings.HasPrefix(p, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	return within(cleanPath) && within(realPath), nil
}

// ValidatePath fails when path leaves the root directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return reviewerrors.New(reviewerrors.ErrorTypeSecurity, "path cannot be empty")
	}
	ok, err := v.IsWithinRoot(path)
	if err != nil {
		return err
	}
	if !ok {
		return reviewerrors.New(reviewerrors.ErrorTypeSecurity, "path is outside the configured directory").
			WithContext(path)
	}
	return nil
}

// Resolve turns path into a validated absolute path. Relative paths are taken relative to
// the root directory and NUL bytes are dropped.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", reviewerrors.New(reviewerrors.ErrorTypeSecurity, "path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", reviewerrors.Wrap(reviewerrors.ErrorTypeSecurity, "failed to resolve path", err)
	}
	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}
