package core

import "errors"

// Error kinds surfaced at the orchestrator boundary. Component errors wrap
// one of these so transports can map them to a stable error string with
// errors.Is without inspecting internals.
var (
	// ErrStorage marks a durable read/write failure. Fatal to the current
	// operation, not to the process.
	ErrStorage = errors.New("storage error")

	// ErrProvider marks a completion failure or timeout. The turn is aborted
	// and memory is left unmodified.
	ErrProvider = errors.New("provider error")

	// ErrValidation marks a malformed client request (e.g. a rejection
	// without the edited reply).
	ErrValidation = errors.New("validation error")

	// ErrNoDraft is returned when a resolve call finds nothing staged.
	ErrNoDraft = errors.New("no pending draft")
)
