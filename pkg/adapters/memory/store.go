package memory

import (
	"context"
	"sync"

	"github.com/aretw0/readiness/pkg/domain"
)

// Store implements ports.ArtifactStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with artifacts.
func NewStore(seed map[string]string) *Store {
	s := &Store{data: make(map[string]string, len(seed))}
	for k, v := range seed {
		s.data[k] = v
	}
	return s
}

// Read returns the artifact stored at path.
func (s *Store) Read(ctx context.Context, path string) (domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.data[path]
	if !ok {
		return domain.MissingArtifact(path), nil
	}
	return domain.Artifact{Path: path, Exists: true, Content: content}, nil
}

// Write stores content at path.
func (s *Store) Write(ctx context.Context, path string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = content
	return nil
}

// Delete removes an artifact.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, path)
}

// Paths returns the stored artifact paths.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.data))
	for p := range s.data {
		paths = append(paths, p)
	}
	return paths
}
