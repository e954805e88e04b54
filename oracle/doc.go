// Package oracle defines the code-generation collaborator boundary.
//
// An Oracle turns a prompt into a candidate-program response. Failures are
// surfaced as typed *Error values (timeout vs transport) so callers can run
// bounded local retries without inspecting provider-specific errors. Concrete
// adapters over vendor SDKs live in the oracle/anthropic and oracle/openai
// subpackages; MockOracle supports tests and examples.
package oracle
