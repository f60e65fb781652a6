package engine

import (
	"errors"

	"sentinel-bot/quarantine"
)

// Structured error codes surfaced to moderation tooling. End users never
// see these; analysis-time failures degrade to "no violation" instead.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPersistenceFailure = errors.New("audit persistence failure")
	ErrNotFound           = errors.New("not found")

	// ErrPermissionDenied originates in the quarantine manager, where the
	// platform refusal happens; re-exported so tooling only needs this
	// package's error codes.
	ErrPermissionDenied = quarantine.ErrPermissionDenied
)
