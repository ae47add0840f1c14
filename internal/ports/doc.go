// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Discoverer]: enumerates experiments in the results container
//   - [Invoker]: runs the external computation program once
//   - [RecordRepository]: persists the last run record
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them.
package ports
