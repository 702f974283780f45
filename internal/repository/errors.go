// Package repository defines error sentinels reused across repositories.
// Higher layers use errors.Is against these values to distinguish
// user-correctable conditions (a missing record) from storage failures.
// Storage failures are wrapped with fmt.Errorf("...: %w", err) so the
// original driver error stays available for logging while handlers map
// the wrapped value to a generic failure response.
package repository

import "errors"

// ErrTheaterNotFound indicates that no theater exists with the given ID.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrScreenNotFound indicates that no screen exists with the given ID.
var ErrScreenNotFound = errors.New("screen not found")

// ErrUserNotFound indicates that no user exists with the given ID or email.
var ErrUserNotFound = errors.New("user not found")

// ErrBookingNotFound indicates that no booking exists with the given ID.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.  The users.email column carries a unique constraint.
var ErrEmailExists = errors.New("email already exists")
