package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviedesk/cinema-booking/internal/model"
)

// TheaterRepo manages persistence for theaters.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the given DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// Create inserts a new theater and assigns the generated ID back to the
// struct.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	const q = `INSERT INTO theaters (name, address) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID retrieves a theater by its ID.  It returns ErrTheaterNotFound
// if there is no matching row.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	const q = `SELECT id, name, address, created_at, updated_at FROM theaters WHERE id = ?`
	var t model.Theater
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns every theater ordered by name.  When none exist it
// returns an empty slice and nil error.
func (r *TheaterRepo) ListAll(ctx context.Context) ([]model.Theater, error) {
	const q = `SELECT id, name, address, created_at, updated_at FROM theaters ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Theater, 0)
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a theater by ID.  It returns ErrTheaterNotFound when no
// row was affected.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM theaters WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTheaterNotFound
	}
	return nil
}
