package core

import "errors"

var (
	// ErrAdmissionStalled is returned by Run when no process runs, arrivals
	// remain, and nothing can move the simulation forward.
	ErrAdmissionStalled = errors.New("core: admission stalled")

	// ErrInvariantViolated is returned by CheckInvariants.
	ErrInvariantViolated = errors.New("core: invariant violated")
)
