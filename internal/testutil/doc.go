// Package testutil contains internal helpers (builders, fixtures) shared by
// tests across packages. Not part of the public API.
package testutil
