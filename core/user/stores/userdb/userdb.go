// Package userdb keeps user accounts in postgres.
package userdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Store struct {
	log logrus.FieldLogger
	db  sqlx.ExtContext
}

func NewStore(log logrus.FieldLogger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, u user.User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, photo_url, birth_date, created_at, updated_at)
	VALUES
		(:user_id, :name, :email, :role, :password_hash, :photo_url, :birth_date, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, u); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return user.ErrUniqueEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, u user.User) error {
	const q = `
	UPDATE users SET
		name = :name,
		password_hash = :password_hash,
		photo_url = :photo_url,
		birth_date = :birth_date,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	n, err := database.NamedExecContext(ctx, s.db, q, u)
	if err != nil {
		return fmt.Errorf("updating user[%s]: %w", u.ID, err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *Store) QueryByID(ctx context.Context, id string) (user.User, error) {
	const q = `
	SELECT * FROM users
	WHERE user_id = :user_id`

	return s.queryOne(ctx, q, map[string]any{"user_id": id})
}

func (s *Store) QueryByEmail(ctx context.Context, email string) (user.User, error) {
	const q = `
	SELECT * FROM users
	WHERE email = :email`

	return s.queryOne(ctx, q, map[string]any{"email": email})
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (user.User, error) {
	var u user.User
	if err := database.NamedQueryStruct(ctx, s.db, q, data, &u); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("selecting user: %w", err)
	}
	return u, nil
}
