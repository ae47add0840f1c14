package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/expbatch/internal/domain"
)

const recordFileName = "last_run.json"

// RecordFileRepository implements ports.RecordRepository using a JSON file.
type RecordFileRepository struct {
	dir string
}

// NewRecordFileRepository creates a RecordFileRepository for the given directory.
func NewRecordFileRepository(dir string) *RecordFileRepository {
	return &RecordFileRepository{dir: dir}
}

// Load retrieves the last saved record from disk.
// Returns an empty record and nil error if no record file exists.
func (r *RecordFileRepository) Load(ctx context.Context) (domain.RunRecord, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RunRecord{}, nil
		}
		return domain.RunRecord{}, err
	}

	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.RunRecord{}, err
	}
	return rec, nil
}

// Save writes the record to a temp file and renames it into place.
func (r *RecordFileRepository) Save(ctx context.Context, rec domain.RunRecord) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the record file.
func (r *RecordFileRepository) Path() string {
	return filepath.Join(r.dir, recordFileName)
}
