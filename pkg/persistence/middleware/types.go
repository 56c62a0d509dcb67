// Package middleware wraps an ArtifactStore with extra behavior.
package middleware

import "github.com/aretw0/readiness/pkg/ports"

// Middleware allows wrapping an ArtifactStore to add behavior.
type Middleware func(ports.ArtifactStore) ports.ArtifactStore

// Chain applies mws to store; the first middleware is the outermost.
func Chain(store ports.ArtifactStore, mws ...Middleware) ports.ArtifactStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
