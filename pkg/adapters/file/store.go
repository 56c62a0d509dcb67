package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/readiness/pkg/domain"
)

// Store implements ports.ArtifactStore on the local filesystem.
// Relative paths are resolved against BaseDir.
type Store struct {
	BaseDir string
}

// New creates a new Store rooted at baseDir.
// If baseDir is empty, paths are resolved against the working directory.
func New(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) || s.BaseDir == "" {
		return path
	}
	return filepath.Join(s.BaseDir, path)
}

// Read returns the artifact at path. A missing file yields Exists == false.
func (s *Store) Read(ctx context.Context, path string) (domain.Artifact, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.MissingArtifact(path), nil
		}
		return domain.Artifact{}, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return domain.Artifact{Path: path, Exists: true, Content: string(data)}, nil
}

// Write persists the artifact atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Write(ctx context.Context, path string, content string) error {
	if path == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}

	destPath := s.resolve(path)
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure artifact directory: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing artifact for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to artifact: %w", err)
	}
	return nil
}
