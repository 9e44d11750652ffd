package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSProvider writes artifacts to a directory on the local filesystem.
type FSProvider struct {
	baseDir string
}

// NewFSProvider returns a provider rooted at baseDir, creating it if needed.
func NewFSProvider(baseDir string) (*FSProvider, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", baseDir, err)
	}
	return &FSProvider{baseDir: baseDir}, nil
}

// Save writes the artifact and returns a file:// URI.
func (s *FSProvider) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("object name is required")
	}

	fullPath := filepath.Join(s.baseDir, name)

	// Reject names that would escape the base directory.
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("object name %q escapes base directory", name)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create parent dir for %s: %w", fullPath, err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", fullPath, err)
	}
	return "file://" + fullPath, nil
}
