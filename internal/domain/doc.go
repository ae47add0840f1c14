// Package domain contains the core value types and errors for expbatch.
//
// This package has no dependencies on infrastructure concerns (processes,
// file system, logging).
//
// # Entities
//
//   - [ExperimentName]: base name of one entry in the results container
//   - [Result]: outcome of a single batch invocation
//   - [RunRecord]: persisted summary of the last run
package domain
