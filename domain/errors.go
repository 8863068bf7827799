package domain

import "errors"

// Error kinds surfaced by the engine. Handlers match with errors.Is: invalid
// arguments map to 400, missing aggregates to 404 and concurrent-update
// conflicts to 409. A Conflict is safe to retry from a fresh read.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)
