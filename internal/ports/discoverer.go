package ports

import (
	"context"

	"github.com/bft-labs/expbatch/internal/domain"
)

// Discoverer lists the experiments currently present in a results container.
type Discoverer interface {
	// Discover returns experiment names in the order the underlying
	// directory listing yields them. Implementations must not sort or
	// filter entries. Failures are reported as *domain.DiscoveryError.
	Discover(ctx context.Context) ([]domain.ExperimentName, error)

	// Root returns the results container path.
	Root() string
}
