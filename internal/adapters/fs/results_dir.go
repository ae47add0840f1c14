package fs

import (
	"context"
	"os"

	"github.com/bft-labs/expbatch/internal/domain"
)

// ResultsDir implements ports.Discoverer over a directory on disk.
type ResultsDir struct {
	root string
}

// NewResultsDir creates a ResultsDir for the given results container.
func NewResultsDir(root string) *ResultsDir {
	return &ResultsDir{root: root}
}

// Root returns the results container path.
func (d *ResultsDir) Root() string {
	return d.root
}

// Discover lists the immediate children of the results container in a single
// pass. Entries keep the order the file system returns them in; os.ReadDir is
// avoided because it sorts. Every entry counts, whether file or directory.
func (d *ResultsDir) Discover(ctx context.Context) ([]domain.ExperimentName, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.DiscoveryError{Root: d.root, Err: err}
	}

	f, err := os.Open(d.root)
	if err != nil {
		return nil, &domain.DiscoveryError{Root: d.root, Err: err}
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, &domain.DiscoveryError{Root: d.root, Err: err}
	}

	names := make([]domain.ExperimentName, 0, len(entries))
	for _, e := range entries {
		names = append(names, domain.ExperimentName(e.Name()))
	}
	return names, nil
}
