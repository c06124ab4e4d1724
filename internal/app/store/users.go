package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id::text, full_name, email, password_hash, bio, profile_pic, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Bio, &u.ProfilePic, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new account. A duplicate email surfaces as a unique
// violation the caller maps to a conflict.
func (s *Store) CreateUser(ctx context.Context, fullName, email, passwordHash, bio string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (full_name, email, password_hash, bio)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		fullName, email, passwordHash, bio)

	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches an account by email for credential checks.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByID fetches an account by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// ListUsersExcept returns every account except the given one, newest first.
func (s *Store) ListUsersExcept(ctx context.Context, id string) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id <> $1::uuid
		ORDER BY created_at DESC`,
		id)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates the display fields of an account. profilePic is only
// written when non-nil; a nil pointer keeps the stored value.
func (s *Store) UpdateProfile(ctx context.Context, id, fullName, bio string, profilePic *string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, bio = $3, profile_pic = COALESCE($4, profile_pic)
		WHERE id = $1::uuid
		RETURNING `+userColumns,
		id, fullName, bio, profilePic)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
