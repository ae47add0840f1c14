package ports

import (
	"context"

	"github.com/bft-labs/expbatch/internal/domain"
)

// RecordRepository persists the summary of the most recent run.
type RecordRepository interface {
	// Load returns an empty record and nil error if nothing was saved yet.
	Load(ctx context.Context) (domain.RunRecord, error)

	// Save persists the record atomically.
	Save(ctx context.Context, rec domain.RunRecord) error
}
