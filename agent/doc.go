// Package agent implements the per-agent iterative refinement loop.
//
// A Runner drives one agent from its configuration to a terminal
// core.AgentResult: build a prompt, call the oracle, parse the candidate
// program, execute it against every train and test example, evaluate, then
// either stop on success or feed the history back into the next prompt.
// Run never fails to its caller; every failure mode is encoded in the
// terminal status or in a per-iteration error kind.
package agent
