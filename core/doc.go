// Package core contains the shared data model for agno: conversation
// messages, execution traces and the discriminated error kinds used across
// the agent runtime and the workflow engine.
//
// The package is intentionally leaf-level. It imports nothing from the rest
// of the module so every other package can depend on it without cycles.
package core
