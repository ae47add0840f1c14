package domain

import "time"

// ExperimentName identifies one experiment by the base name of an entry
// in the results container. Names are never empty.
type ExperimentName string

// Args converts names to the positional argument list passed to the
// external program, keeping discovery order.
func Args(names []ExperimentName) []string {
	args := make([]string, len(names))
	for i, n := range names {
		args[i] = string(n)
	}
	return args
}

// Result is the outcome of one batch invocation.
type Result struct {
	// ExitCode is the external program's exit code.
	ExitCode int

	// Experiments are the names passed to the program, in discovery order.
	Experiments []ExperimentName

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the external program ran.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the external program exited with code 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}
