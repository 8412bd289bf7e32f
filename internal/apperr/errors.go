package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict on admin data (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState indicates that a transition precondition is not met.
var ErrInvalidState = errors.New("invalid state")

// ErrNoCapacity indicates that the courier pool has no available courier.
var ErrNoCapacity = errors.New("no available courier")

// ErrUnauthorized indicates a courier acting on a delivery assigned to someone else.
var ErrUnauthorized = errors.New("unauthorized")

// ErrDuplicateRequest marks an idempotent no-op. It is absorbed, never surfaced to callers.
var ErrDuplicateRequest = errors.New("duplicate request")

// ErrTransient indicates lock contention, serialization failure or a lost connection.
var ErrTransient = errors.New("transient store error")
