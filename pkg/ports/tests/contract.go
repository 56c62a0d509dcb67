package tests

import (
	"context"
	"testing"

	"github.com/aretw0/readiness/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ArtifactStoreContractTest verifies that an adapter complies with ports.ArtifactStore.
// root is a location the adapter can write beneath (a temp dir for disk stores).
func ArtifactStoreContractTest(t *testing.T, store ports.ArtifactStore, root string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Read_Missing", func(t *testing.T) {
		art, err := store.Read(ctx, root+"/absent.md")
		require.NoError(t, err)
		assert.False(t, art.Exists)
		assert.Empty(t, art.Content)
		assert.Equal(t, root+"/absent.md", art.Path)
	})

	t.Run("Write_Then_Read", func(t *testing.T) {
		path := root + "/nested/dir/report.md"
		require.NoError(t, store.Write(ctx, path, "# Report\n\n- verdict: READY\n"))

		art, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.True(t, art.Exists)
		assert.Equal(t, "# Report\n\n- verdict: READY\n", art.Content)
	})

	t.Run("Overwrite", func(t *testing.T) {
		path := root + "/overwrite.md"
		require.NoError(t, store.Write(ctx, path, "first"))
		require.NoError(t, store.Write(ctx, path, "second"))

		art, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "second", art.Content)
	})
}
