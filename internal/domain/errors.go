package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the expbatch domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrDiscovery is returned when the results container is missing or not listable.
	ErrDiscovery = errors.New("expbatch: discovery failed")

	// ErrInvocation is returned when the external program cannot be located or started.
	ErrInvocation = errors.New("expbatch: invocation failed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("expbatch: invalid configuration")
)

// DiscoveryError reports a failure to enumerate the results container.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover experiments in %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() []error { return []error{ErrDiscovery, e.Err} }

// InvocationError reports a failure to locate or start the external program.
type InvocationError struct {
	Program string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Program, e.Err)
}

func (e *InvocationError) Unwrap() []error { return []error{ErrInvocation, e.Err} }
