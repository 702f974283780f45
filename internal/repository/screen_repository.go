// This file contains data access logic for screens.  A screen is one
// scheduled showing of a movie at a theater.  The seat_layout and
// available_seats columns hold comma-delimited seat labels and are
// converted to proper sets at the repository boundary so the rest of the
// code never touches the delimited representation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/seats"
)

const screenColumns = `id, theater_id, movie_name, show_time, seat_layout, available_seats, created_at, updated_at`

// ScreenRepo manages persistence for screens.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo constructs a ScreenRepo with the given DB handle.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// Create inserts a new screen.  The full seat layout is also written to
// available_seats, because a newly created screen has no bookings.  The
// generated ID is assigned back to the struct.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	layout := seats.Format(s.SeatLayout)
	const q = `INSERT INTO screens (theater_id, movie_name, show_time, seat_layout, available_seats)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.TheaterID, s.MovieName, s.ShowTime.UTC(), layout, layout)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.AvailableSeats = s.SeatLayout.Clone()
	return nil
}

// GetByID retrieves a screen by its ID.  It returns ErrScreenNotFound if
// there is no matching row.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	const q = `SELECT ` + screenColumns + ` FROM screens WHERE id = ?`
	return scanScreen(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a screen inside the given transaction with a
// row lock (SELECT ... FOR UPDATE).  Two concurrent booking transactions
// for the same screen serialize on this lock, so a check-then-reserve
// sequence cannot interleave with another one.
func (r *ScreenRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Screen, error) {
	const q = `SELECT ` + screenColumns + ` FROM screens WHERE id = ? FOR UPDATE`
	return scanScreen(tx.QueryRowContext(ctx, q, id))
}

// UpdateAvailableSeatsTx persists a new availability set for a screen
// within the caller's transaction.  The caller must hold the row lock
// from GetByIDForUpdateTx.
func (r *ScreenRepo) UpdateAvailableSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, available seats.Set) error {
	const q = `UPDATE screens SET available_seats = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, seats.Format(available), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScreenNotFound
	}
	return nil
}

// ListByTheater returns all screens for a theater ordered by show time
// ascending.  When none exist it returns an empty slice and nil error.
func (r *ScreenRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error) {
	const q = `SELECT ` + screenColumns + ` FROM screens WHERE theater_id = ? ORDER BY show_time ASC`
	rows, err := r.db.QueryContext(ctx, q, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectScreens(rows)
}

// SearchByMovie returns screens whose movie name contains the given
// substring (case-insensitive via the column collation), ordered by show
// time ascending.
func (r *ScreenRepo) SearchByMovie(ctx context.Context, movieName string) ([]model.Screen, error) {
	const q = `SELECT ` + screenColumns + ` FROM screens WHERE movie_name LIKE ? ORDER BY show_time ASC`
	rows, err := r.db.QueryContext(ctx, q, "%"+movieName+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectScreens(rows)
}

// Delete removes a screen by ID.  It returns ErrScreenNotFound when no
// row was affected.
func (r *ScreenRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM screens WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScreenNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreen(row *sql.Row) (*model.Screen, error) {
	s, err := scanScreenFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreenNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanScreenFrom(sc rowScanner) (*model.Screen, error) {
	var (
		s         model.Screen
		layout    string
		available string
		showTime  time.Time
	)
	if err := sc.Scan(&s.ID, &s.TheaterID, &s.MovieName, &showTime, &layout, &available,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ShowTime = showTime.UTC()
	s.SeatLayout = seats.Parse(layout)
	s.AvailableSeats = seats.Parse(available)
	return &s, nil
}

func collectScreens(rows *sql.Rows) ([]model.Screen, error) {
	result := make([]model.Screen, 0)
	for rows.Next() {
		s, err := scanScreenFrom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
