package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moviedesk/cinema-booking/internal/model"
)

// ErrSeatConflict is returned by ReserveAndCreateBooking when the row
// lock reveals that some requested seat left availability between the
// caller's check and the transaction.  The service layer translates it
// into its seat-unavailable error.
var ErrSeatConflict = errors.New("seat no longer available")

// Store bundles the entity repositories behind one handle and owns the
// multi-repository transactions.  Booking creation and cancellation each
// touch two tables (bookings and screens.available_seats); doing both
// writes under a single BEGIN/COMMIT with the screen row locked keeps
// the ledger and the inventory consistent even if the process dies
// mid-operation, and serializes concurrent attempts on the same screen.
type Store struct {
	db       *sql.DB
	Users    *UserRepo
	Theaters *TheaterRepo
	Screens  *ScreenRepo
	Bookings *BookingRepo
}

// NewStore constructs a Store and its repositories from one DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepo(db),
		Theaters: NewTheaterRepo(db),
		Screens:  NewScreenRepo(db),
		Bookings: NewBookingRepo(db),
	}
}

// DB exposes the underlying sql.DB for callers that need fine-grained
// transaction control.
func (s *Store) DB() *sql.DB { return s.db }

// GetUser loads a user by ID.
func (s *Store) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	return s.Users.GetByID(ctx, id)
}

// GetTheater loads a theater by ID.
func (s *Store) GetTheater(ctx context.Context, id uint64) (*model.Theater, error) {
	return s.Theaters.GetByID(ctx, id)
}

// GetScreen loads a screen by ID.
func (s *Store) GetScreen(ctx context.Context, id uint64) (*model.Screen, error) {
	return s.Screens.GetByID(ctx, id)
}

// ListScreensByTheater lists the screens of one theater, soonest first.
func (s *Store) ListScreensByTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error) {
	return s.Screens.ListByTheater(ctx, theaterID)
}

// SearchScreensByMovie lists screens whose movie name contains the given
// substring, soonest first.
func (s *Store) SearchScreensByMovie(ctx context.Context, movieName string) ([]model.Screen, error) {
	return s.Screens.SearchByMovie(ctx, movieName)
}

// GetBooking loads a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

// ListBookingsByUser lists a user's bookings, newest first.
func (s *Store) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

// ReserveAndCreateBooking atomically inserts the booking and removes its
// seats from the screen's availability.  The screen row is locked for
// the duration of the transaction, and the availability check is redone
// under that lock: two concurrent bookings with overlapping seats cannot
// both commit, regardless of what either caller observed beforehand.
func (s *Store) ReserveAndCreateBooking(ctx context.Context, b *model.Booking) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		screen, err := s.Screens.GetByIDForUpdateTx(ctx, tx, b.ScreenID)
		if err != nil {
			return err
		}
		if !b.ReservedSeats.IsSubset(screen.AvailableSeats) {
			return ErrSeatConflict
		}
		if err := s.Bookings.CreateTx(ctx, tx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		remaining := screen.AvailableSeats.Difference(b.ReservedSeats)
		if err := s.Screens.UpdateAvailableSeatsTx(ctx, tx, screen.ID, remaining); err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}
		return nil
	})
}

// ReleaseAndDeleteBooking atomically returns a booking's seats to the
// screen's availability and deletes the booking.  The union is
// idempotent: seats already present are not duplicated.  The booking row
// is re-read under lock so a concurrent cancel of the same booking
// observes ErrBookingNotFound instead of double-releasing.
func (s *Store) ReleaseAndDeleteBooking(ctx context.Context, bookingID uint64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.Bookings.GetByIDTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		screen, err := s.Screens.GetByIDForUpdateTx(ctx, tx, b.ScreenID)
		if err != nil {
			return err
		}
		restored := screen.AvailableSeats.Union(b.ReservedSeats)
		if err := s.Screens.UpdateAvailableSeatsTx(ctx, tx, screen.ID, restored); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		if err := s.Bookings.DeleteTx(ctx, tx, bookingID); err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
