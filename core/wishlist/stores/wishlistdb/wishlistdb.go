// Package wishlistdb keeps wishlists and their products in postgres.
package wishlistdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/wishlist"
	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Store struct {
	log logrus.FieldLogger
	db  sqlx.ExtContext
	tx  *sqlx.DB
}

func NewStore(log logrus.FieldLogger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
		tx:  db,
	}
}

func (s *Store) WithinTran(ctx context.Context, fn func(s wishlist.Storer) error) error {
	if s.tx == nil {
		return fn(s)
	}
	return database.Transaction(ctx, s.tx, func(tx sqlx.ExtContext) error {
		return fn(&Store{log: s.log, db: tx})
	})
}

func (s *Store) Create(ctx context.Context, w wishlist.Wishlist) error {
	const q = `
	INSERT INTO wishlists
		(wishlist_id, user_id, session_key, created_at, updated_at)
	VALUES
		(:wishlist_id, :user_id, :session_key, :created_at, :updated_at)
	ON CONFLICT DO NOTHING`

	n, err := database.NamedExecContext(ctx, s.db, q, toDBWishlist(w))
	if err != nil {
		return fmt.Errorf("inserting wishlist: %w", err)
	}
	if n == 0 {
		return wishlist.ErrConflict
	}
	return nil
}

func (s *Store) QueryByOwner(ctx context.Context, o owner.Owner) (wishlist.Wishlist, error) {
	const byUser = `
	SELECT * FROM wishlists
	WHERE user_id = :user_id`

	const bySession = `
	SELECT * FROM wishlists
	WHERE session_key = :session_key AND user_id IS NULL`

	if id, ok := o.UserID(); ok {
		return s.queryWishlist(ctx, byUser, map[string]any{"user_id": id})
	}
	if tok, ok := o.Token(); ok {
		return s.queryWishlist(ctx, bySession, map[string]any{"session_key": tok})
	}
	return wishlist.Wishlist{}, wishlist.ErrInvalidOwner
}

func (s *Store) Lock(ctx context.Context, wishlistID string) (wishlist.Wishlist, error) {
	const q = `
	SELECT * FROM wishlists
	WHERE wishlist_id = :wishlist_id
	FOR UPDATE`

	return s.queryWishlist(ctx, q, map[string]any{"wishlist_id": wishlistID})
}

func (s *Store) Touch(ctx context.Context, wishlistID string, now time.Time) error {
	const q = `
	UPDATE wishlists SET updated_at = :updated_at
	WHERE wishlist_id = :wishlist_id`

	data := map[string]any{"wishlist_id": wishlistID, "updated_at": now}
	if _, err := database.NamedExecContext(ctx, s.db, q, data); err != nil {
		return fmt.Errorf("touching wishlist[%s]: %w", wishlistID, err)
	}
	return nil
}

// Delete removes a wishlist along with its items.
func (s *Store) Delete(ctx context.Context, wishlistID string) error {
	const q = `
	DELETE FROM wishlists
	WHERE wishlist_id = :wishlist_id`

	n, err := database.NamedExecContext(ctx, s.db, q, map[string]any{"wishlist_id": wishlistID})
	if err != nil {
		return fmt.Errorf("deleting wishlist[%s]: %w", wishlistID, err)
	}
	if n == 0 {
		return wishlist.ErrNotFound
	}
	return nil
}

func (s *Store) QueryItems(ctx context.Context, wishlistID string) ([]wishlist.Item, error) {
	const q = `
	SELECT wishlist_id, product_id, created_at
	FROM wishlist_items
	WHERE wishlist_id = :wishlist_id
	ORDER BY item_id`

	var dbis []dbItem
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{"wishlist_id": wishlistID}, &dbis); err != nil {
		return nil, fmt.Errorf("selecting items of wishlist[%s]: %w", wishlistID, err)
	}
	return toCoreItems(dbis), nil
}

// AddItem inserts it, reporting false when the product was already there.
func (s *Store) AddItem(ctx context.Context, it wishlist.Item) (bool, error) {
	const q = `
	INSERT INTO wishlist_items
		(wishlist_id, product_id, created_at)
	VALUES
		(:wishlist_id, :product_id, :created_at)
	ON CONFLICT (wishlist_id, product_id) DO NOTHING`

	n, err := database.NamedExecContext(ctx, s.db, q, dbItem(it))
	if err != nil {
		return false, fmt.Errorf("inserting item[%s] in wishlist[%s]: %w", it.ProductID, it.WishlistID, err)
	}
	return n == 1, nil
}

func (s *Store) DeleteItem(ctx context.Context, wishlistID string, productID string) error {
	const q = `
	DELETE FROM wishlist_items
	WHERE wishlist_id = :wishlist_id AND product_id = :product_id`

	data := map[string]any{"wishlist_id": wishlistID, "product_id": productID}
	n, err := database.NamedExecContext(ctx, s.db, q, data)
	if err != nil {
		return fmt.Errorf("deleting item[%s] from wishlist[%s]: %w", productID, wishlistID, err)
	}
	if n == 0 {
		return wishlist.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItems(ctx context.Context, wishlistID string) error {
	const q = `
	DELETE FROM wishlist_items
	WHERE wishlist_id = :wishlist_id`

	if _, err := database.NamedExecContext(ctx, s.db, q, map[string]any{"wishlist_id": wishlistID}); err != nil {
		return fmt.Errorf("deleting items from wishlist[%s]: %w", wishlistID, err)
	}
	return nil
}

func (s *Store) queryWishlist(ctx context.Context, q string, data any) (wishlist.Wishlist, error) {
	var dbw dbWishlist
	if err := database.NamedQueryStruct(ctx, s.db, q, data, &dbw); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return wishlist.Wishlist{}, wishlist.ErrNotFound
		}
		return wishlist.Wishlist{}, fmt.Errorf("selecting wishlist: %w", err)
	}
	return toCoreWishlist(dbw), nil
}
