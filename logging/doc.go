// Package logging provides a minimal logging interface and adapters for solvegrid.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the scheduler and agents use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SolveLogger adapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
