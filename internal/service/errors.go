// Package service implements the reservation engine: seat-availability
// reads, the booking workflow and cancellation with its time window.
package service

import "errors"

// ErrSeatUnavailable is returned when any requested seat is not currently
// available, either because another active booking holds it or because
// the label is outside the screen's layout.  The message is surfaced
// verbatim to the caller.
var ErrSeatUnavailable = errors.New("some selected seats are not available")

// ErrCancellationWindowExpired is returned when cancellation is attempted
// one hour or more after the booking was created.  The message is
// surfaced verbatim to the caller.
var ErrCancellationWindowExpired = errors.New("cannot cancel booking after 1 hour of booking time")

// ErrNoSeatsSelected is returned when BookSeats is called with an empty
// seat set.
var ErrNoSeatsSelected = errors.New("no seats selected")
