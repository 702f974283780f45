package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/seats"
)

const bookingColumns = `id, user_id, screen_id, booking_time, reserved_seats, total_price, created_at`

// BookingRepo manages persistence for bookings.  Creation and deletion
// happen inside the transaction that also adjusts the owning screen's
// availability; the ...Tx methods participate in that transaction and
// never commit it themselves.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a new booking within the caller's transaction and
// assigns the generated ID back to the struct.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, screen_id, booking_time, reserved_seats, total_price)
               VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ScreenID, b.BookingTime.UTC(),
		seats.Format(b.ReservedSeats), b.TotalPrice)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID retrieves a booking by its ID.  It returns ErrBookingNotFound
// if there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id).Scan)
}

// GetByIDTx is GetByID within the caller's transaction.  The cancel path
// uses it so the window check and the delete see the same row state.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, q, id).Scan)
}

// DeleteTx removes a booking within the caller's transaction.  It
// returns ErrBookingNotFound when no row was affected.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM bookings WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrBookingNotFound)
}

// Delete removes a booking outside any transaction.  This is the
// administrative hard-delete path: it intentionally does NOT touch the
// screen's availability, matching the observed behavior of the system it
// replaces (the seats stay unavailable until the screen is recreated).
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM bookings WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrBookingNotFound)
}

// ListByUser returns all bookings made by a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY booking_time DESC`
	return r.list(ctx, q, userID)
}

// ListByScreen returns all active bookings for a screen.  The invariant
// checks in tests rely on this to compute the union of reserved seats.
func (r *BookingRepo) ListByScreen(ctx context.Context, screenID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE screen_id = ? ORDER BY booking_time ASC`
	return r.list(ctx, q, screenID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Booking, 0)
	for rows.Next() {
		b, err := r.scanOne(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BookingRepo) scanOne(scan func(dest ...any) error) (*model.Booking, error) {
	var (
		b           model.Booking
		reserved    string
		bookingTime time.Time
	)
	err := scan(&b.ID, &b.UserID, &b.ScreenID, &bookingTime, &reserved, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.BookingTime = bookingTime.UTC()
	b.ReservedSeats = seats.Parse(reserved)
	return &b, nil
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
