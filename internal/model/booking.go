package model

import (
	"time"

	"github.com/moviedesk/cinema-booking/internal/seats"
)

// Booking records a confirmed reservation of a non-empty seat subset of
// one screen by one user.  ReservedSeats is disjoint from every other
// booking's reserved seats for the same screen.  A booking stays active
// until it is cancelled (permitted only within one hour of BookingTime)
// or deleted administratively; there is no separate "completed" state.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the booking.
//  ScreenID      – screen being booked.
//  BookingTime   – when the booking was created (UTC); anchors the
//                  cancellation window.
//  ReservedSeats – seats taken out of the screen's availability.
//  TotalPrice    – flat per-seat rate times the number of seats.
//  CreatedAt     – creation timestamp.
type Booking struct {
	ID            uint64    // bookings.id
	UserID        uint64    // bookings.user_id
	ScreenID      uint64    // bookings.screen_id
	BookingTime   time.Time // bookings.booking_time
	ReservedSeats seats.Set // bookings.reserved_seats (delimited string column)
	TotalPrice    float64   // bookings.total_price
	CreatedAt     time.Time // bookings.created_at
}
