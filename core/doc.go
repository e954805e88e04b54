// Package core provides the foundational domain types used across solvegrid.
// It defines the core abstractions for:
//
//   - Grids and Tasks (the puzzle data: train pairs and test inputs)
//   - AgentConfig (the immutable per-agent budget and sampling parameters)
//   - RunResult / IterationRecord (the append-only refinement history)
//   - AgentResult (the terminal outcome of one agent's loop)
//
// The package intentionally keeps implementation concerns (oracle transport,
// sandbox execution, scheduling, ranking) out of scope, exposing small value
// types so every other package can depend on it without cycles.
package core
