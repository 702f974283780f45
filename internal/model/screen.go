package model

import (
	"time"

	"github.com/moviedesk/cinema-booking/internal/seats"
)

// Screen represents one scheduled showing of a movie at a theater with a
// fixed seat layout.  SeatLayout is set once at creation and never widens;
// AvailableSeats is always a subset of SeatLayout.  The complement of
// AvailableSeats within SeatLayout is exactly the union of reserved seats
// over all active bookings for the screen.
//
// Fields:
//  ID             – primary key identifier.
//  TheaterID      – theater where the showing takes place.
//  MovieName      – title of the movie being shown.
//  ShowTime       – when the showing starts (UTC).
//  SeatLayout     – the full, immutable seat layout of the screen.
//  AvailableSeats – seats not currently reserved by any booking.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Screen struct {
	ID             uint64    // screens.id
	TheaterID      uint64    // screens.theater_id
	MovieName      string    // screens.movie_name
	ShowTime       time.Time // screens.show_time
	SeatLayout     seats.Set // screens.seat_layout (delimited string column)
	AvailableSeats seats.Set // screens.available_seats (delimited string column)
	CreatedAt      time.Time // screens.created_at
	UpdatedAt      time.Time // screens.updated_at
}
