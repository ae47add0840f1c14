package ports

import (
	"context"
	"io"
)

// Invocation describes a single run of the external program.
type Invocation struct {
	// Args are appended after the configured program arguments.
	Args []string

	// Stdout receives the program's full standard output.
	Stdout io.Writer
}

// Invoker runs the external computation program.
type Invoker interface {
	// Resolve checks that the program can be located without starting it.
	// Failures are reported as *domain.InvocationError.
	Resolve() error

	// Invoke starts the program, waits for it to exit and returns its exit code.
	// A non-zero exit is not an error. Failures to start are reported as
	// *domain.InvocationError.
	Invoke(ctx context.Context, inv Invocation) (int, error)

	// Command returns the program and its fixed leading arguments.
	Command() []string
}
