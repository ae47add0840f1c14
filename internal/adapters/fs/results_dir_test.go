package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/expbatch/internal/domain"
)

func TestResultsDir_Discover(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "alpha"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "beta"), 0o755))
	// Plain files are experiments too.
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0o644))

	names, err := NewResultsDir(root).Discover(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.ExperimentName{"alpha", "beta", "stray.txt"}, names)

	for _, n := range names {
		require.NotContains(t, string(n), string(filepath.Separator))
	}
}

func TestResultsDir_DiscoverEmpty(t *testing.T) {
	names, err := NewResultsDir(t.TempDir()).Discover(context.Background())
	require.NoError(t, err)
	require.Empty(t, names)
	require.NotNil(t, names)
}

func TestResultsDir_DiscoverMissing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	_, err := NewResultsDir(root).Discover(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrDiscovery)
	require.ErrorIs(t, err, os.ErrNotExist)

	var de *domain.DiscoveryError
	require.True(t, errors.As(err, &de))
	require.Equal(t, root, de.Root)
}

func TestResultsDir_DiscoverNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewResultsDir(path).Discover(context.Background())
	require.ErrorIs(t, err, domain.ErrDiscovery)
}

func TestResultsDir_DiscoverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResultsDir(t.TempDir()).Discover(ctx)
	require.ErrorIs(t, err, domain.ErrDiscovery)
	require.ErrorIs(t, err, context.Canceled)
}
