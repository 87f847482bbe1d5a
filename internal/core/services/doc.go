// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services hold no mutable state of their own and are safe for
// concurrent use; all state lives behind the driven ports.
package services
