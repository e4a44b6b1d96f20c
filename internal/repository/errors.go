// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current owner is not
// authorized to touch a resource belonging to another tenant, while
// ErrConflict signals that an operation cannot proceed due to the
// current state of a row (e.g. changing the status of a delivery that
// has already reached a terminal state).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as moving a delivery out of a terminal
// status. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when an insert would violate an email
// uniqueness constraint on owners or employees.
var ErrEmailExists = errors.New("email already exists")

// ErrNoActiveSubscription is returned when a delivery assignment is
// attempted for a customer/newspaper pair that has no active
// subscription at assignment time.
var ErrNoActiveSubscription = errors.New("no active subscription for customer and newspaper")
