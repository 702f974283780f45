// Package queue defines message payloads exchanged over the message broker
// plus the publisher and the background consumer that records booking
// activity.
package queue

// BookingCreatedEvent is published when seats are successfully booked.
// It carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID  uint64   `json:"booking_id"`
	UserID     uint64   `json:"user_id"`
	ScreenID   uint64   `json:"screen_id"`
	MovieName  string   `json:"movie_name"`
	ShowTime   string   `json:"show_time"`
	Seats      []string `json:"seats"`
	TotalPrice float64  `json:"total_price"`
	BookedAt   string   `json:"booked_at"`
}

// BookingCancelledEvent is published when a booking is cancelled within
// the cancellation window and its seats return to availability.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ScreenID    uint64   `json:"screen_id"`
	Seats       []string `json:"seats"`
	CancelledAt string   `json:"cancelled_at"`
}
