// Package memory provides in-memory implementations of driven ports.
//
// The stores here hold no files and vanish with the process. They back
// unit tests across the engine and the --ephemeral CLI mode.
package memory
