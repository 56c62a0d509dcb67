package pipeline

import (
	"context"
	"fmt"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/aretw0/readiness/pkg/signal"
)

// ReadOverlay reads the verdict of every existing artifact in g.
// Absent artifacts are left out; artifacts without a recognizable verdict
// map to the empty verdict.
func ReadOverlay(ctx context.Context, store ports.ArtifactStore, g Graph) (*Overlay, error) {
	o := &Overlay{Verdicts: make(map[string]domain.Verdict)}
	for _, n := range g.Nodes {
		a, err := store.Read(ctx, n.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", n.Output, err)
		}
		if !a.Exists {
			continue
		}
		o.Verdicts[n.ID] = signal.ParseVerdictOnly(a.Content).Verdict
	}
	return o, nil
}
