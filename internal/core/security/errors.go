package security

import "errors"

// Errors shared by the guard components.
var (
	// ErrInvalidInput means the command buffer could not be copied. The
	// decision point treats it as a deny.
	ErrInvalidInput = errors.New("invalid command input")

	// ErrPermissionDenied is returned to the caller of a denied execution.
	ErrPermissionDenied = errors.New("operation not permitted")

	// ErrHookRegistrationFailed means the guard could not attach to the
	// execution path.
	ErrHookRegistrationFailed = errors.New("hook registration failed")

	// ErrSignalSourceUnavailable means no input-event source could be
	// opened for confirmations.
	ErrSignalSourceUnavailable = errors.New("signal source unavailable")
)
