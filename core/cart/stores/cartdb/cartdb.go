// Package cartdb keeps carts and their lines in postgres.
package cartdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/owner"
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

// WithinTran runs fn against a store bound to a new transaction. Nested
// calls reuse the current transaction.
func (s *Store) WithinTran(ctx context.Context, fn func(s cart.Storer) error) error {
	if s.tx == nil {
		return fn(s)
	}
	return database.Transaction(ctx, s.tx, func(tx sqlx.ExtContext) error {
		return fn(&Store{log: s.log, db: tx})
	})
}

// Create inserts c unless its owner already has an active cart, in which
// case it reports cart.ErrConflict.
func (s *Store) Create(ctx context.Context, c cart.Cart) error {
	const q = `
	INSERT INTO carts
		(cart_id, user_id, session_key, is_active, created_at, updated_at)
	VALUES
		(:cart_id, :user_id, :session_key, :is_active, :created_at, :updated_at)
	ON CONFLICT DO NOTHING`

	n, err := database.NamedExecContext(ctx, s.db, q, toDBCart(c))
	if err != nil {
		return fmt.Errorf("inserting cart: %w", err)
	}
	if n == 0 {
		return cart.ErrConflict
	}
	return nil
}

func (s *Store) QueryByOwner(ctx context.Context, o owner.Owner) (cart.Cart, error) {
	const byUser = `
	SELECT * FROM carts
	WHERE user_id = :user_id AND is_active`

	const bySession = `
	SELECT * FROM carts
	WHERE session_key = :session_key AND user_id IS NULL AND is_active`

	if id, ok := o.UserID(); ok {
		return s.queryCart(ctx, byUser, map[string]any{"user_id": id})
	}
	if tok, ok := o.Token(); ok {
		return s.queryCart(ctx, bySession, map[string]any{"session_key": tok})
	}
	return cart.Cart{}, cart.ErrInvalidOwner
}

// Lock takes the row lock of an active cart until the transaction ends.
func (s *Store) Lock(ctx context.Context, cartID string) (cart.Cart, error) {
	const q = `
	SELECT * FROM carts
	WHERE cart_id = :cart_id AND is_active
	FOR UPDATE`

	return s.queryCart(ctx, q, map[string]any{"cart_id": cartID})
}

func (s *Store) Touch(ctx context.Context, cartID string, now time.Time) error {
	const q = `
	UPDATE carts SET updated_at = :updated_at
	WHERE cart_id = :cart_id`

	data := map[string]any{"cart_id": cartID, "updated_at": now}
	if _, err := database.NamedExecContext(ctx, s.db, q, data); err != nil {
		return fmt.Errorf("touching cart[%s]: %w", cartID, err)
	}
	return nil
}

// Retire deactivates a cart, keeping it and its lines as an audit trail.
func (s *Store) Retire(ctx context.Context, cartID string, now time.Time) error {
	const q = `
	UPDATE carts SET
		is_active = FALSE,
		retired_at = :now,
		updated_at = :now
	WHERE cart_id = :cart_id AND is_active`

	n, err := database.NamedExecContext(ctx, s.db, q, map[string]any{"cart_id": cartID, "now": now})
	if err != nil {
		return fmt.Errorf("retiring cart[%s]: %w", cartID, err)
	}
	if n == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (s *Store) QueryItems(ctx context.Context, cartID string) ([]cart.Item, error) {
	const q = `
	SELECT cart_id, product_id, quantity, price, created_at, updated_at
	FROM cart_items
	WHERE cart_id = :cart_id
	ORDER BY item_id`

	var dbis []dbItem
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{"cart_id": cartID}, &dbis); err != nil {
		return nil, fmt.Errorf("selecting items of cart[%s]: %w", cartID, err)
	}
	return toCoreItems(dbis), nil
}

func (s *Store) QueryItem(ctx context.Context, cartID string, productID string) (cart.Item, error) {
	const q = `
	SELECT cart_id, product_id, quantity, price, created_at, updated_at
	FROM cart_items
	WHERE cart_id = :cart_id AND product_id = :product_id`

	var dbi dbItem
	data := map[string]any{"cart_id": cartID, "product_id": productID}
	if err := database.NamedQueryStruct(ctx, s.db, q, data, &dbi); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return cart.Item{}, cart.ErrNotFound
		}
		return cart.Item{}, fmt.Errorf("selecting item[%s] of cart[%s]: %w", productID, cartID, err)
	}
	return cart.Item(dbi), nil
}

func (s *Store) CreateItem(ctx context.Context, it cart.Item) error {
	const q = `
	INSERT INTO cart_items
		(cart_id, product_id, quantity, price, created_at, updated_at)
	VALUES
		(:cart_id, :product_id, :quantity, :price, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, toDBItem(it)); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return cart.ErrConflict
		}
		return fmt.Errorf("inserting item[%s] in cart[%s]: %w", it.ProductID, it.CartID, err)
	}
	return nil
}

// UpdateItem saves the quantity of a line. The price snapshot is never
// rewritten.
func (s *Store) UpdateItem(ctx context.Context, it cart.Item) error {
	const q = `
	UPDATE cart_items SET
		quantity = :quantity,
		updated_at = :updated_at
	WHERE cart_id = :cart_id AND product_id = :product_id`

	n, err := database.NamedExecContext(ctx, s.db, q, toDBItem(it))
	if err != nil {
		return fmt.Errorf("updating item[%s] in cart[%s]: %w", it.ProductID, it.CartID, err)
	}
	if n == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, cartID string, productID string) error {
	const q = `
	DELETE FROM cart_items
	WHERE cart_id = :cart_id AND product_id = :product_id`

	data := map[string]any{"cart_id": cartID, "product_id": productID}
	n, err := database.NamedExecContext(ctx, s.db, q, data)
	if err != nil {
		return fmt.Errorf("deleting item[%s] from cart[%s]: %w", productID, cartID, err)
	}
	if n == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItems(ctx context.Context, cartID string) error {
	const q = `
	DELETE FROM cart_items
	WHERE cart_id = :cart_id`

	if _, err := database.NamedExecContext(ctx, s.db, q, map[string]any{"cart_id": cartID}); err != nil {
		return fmt.Errorf("deleting items from cart[%s]: %w", cartID, err)
	}
	return nil
}

func (s *Store) queryCart(ctx context.Context, q string, data any) (cart.Cart, error) {
	var dbc dbCart
	if err := database.NamedQueryStruct(ctx, s.db, q, data, &dbc); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return cart.Cart{}, cart.ErrNotFound
		}
		return cart.Cart{}, fmt.Errorf("selecting cart: %w", err)
	}
	return toCoreCart(dbc), nil
}
