package ports

import (
	"context"

	"github.com/aretw0/readiness/pkg/domain"
)

// ArtifactStore reads and writes stage artifacts.
// It performs no caching and no locking: each pipeline invocation has a
// single reader and a single writer per path.
type ArtifactStore interface {
	// Read returns the artifact at path. A missing file is not an error:
	// it yields an Artifact with Exists == false.
	Read(ctx context.Context, path string) (domain.Artifact, error)

	// Write persists content at path, creating parent directories as needed.
	Write(ctx context.Context, path string, content string) error
}
