package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/moviedesk/cinema-booking/internal/model"
)

// UserRepo manages persistence for application users.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user and assigns the generated ID back to the
// struct.  Email is normalized to lower case before insertion.  When the
// email is already taken, ErrEmailExists is returned; the MySQL driver
// reports unique-constraint violations as error 1062.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users (name, email, phone_number, password_hash, role) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.  It returns ErrUserNotFound when no
// matching row exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, name, email, phone_number, password_hash, role, is_active, created_at, updated_at
               FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail fetches a user by normalized email.  It returns
// ErrUserNotFound when no matching row exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT id, name, email, phone_number, password_hash, role, is_active, created_at, updated_at
               FROM users WHERE email = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
