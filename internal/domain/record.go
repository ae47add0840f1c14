package domain

import "time"

// RunRecord is the persisted summary of the most recent run.
// JSON uses snake_case field names.
type RunRecord struct {
	RunID       string           `json:"run_id"`
	ResultsRoot string           `json:"results_root"`
	LogPath     string           `json:"log_path"`
	Program     []string         `json:"program"`
	Experiments []ExperimentName `json:"experiments"`
	ExitCode    int              `json:"exit_code"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Error       string           `json:"error,omitempty"`
}

// IsEmpty returns true if no run has been recorded.
func (r RunRecord) IsEmpty() bool {
	return r.RunID == ""
}
