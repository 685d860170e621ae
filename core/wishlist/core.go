// Package wishlist keeps the set of products a user or an anonymous
// visitor marked for later, and folds the visitor's set into the user's at
// login.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("wishlist or wishlist item not found")
	ErrConflict     = errors.New("wishlist already exists for owner")
	ErrInvalidOwner = owner.ErrInvalid
)

const resolveAttempts = 3

// Storer is the persistence the wishlist core needs. Create reports an
// owner that already has a wishlist as ErrConflict without poisoning a
// surrounding transaction.
type Storer interface {
	WithinTran(ctx context.Context, fn func(s Storer) error) error
	Create(ctx context.Context, w Wishlist) error
	QueryByOwner(ctx context.Context, o owner.Owner) (Wishlist, error)
	Lock(ctx context.Context, wishlistID string) (Wishlist, error)
	Touch(ctx context.Context, wishlistID string, now time.Time) error
	Delete(ctx context.Context, wishlistID string) error
	QueryItems(ctx context.Context, wishlistID string) ([]Item, error)
	AddItem(ctx context.Context, it Item) (bool, error)
	DeleteItem(ctx context.Context, wishlistID string, productID string) error
	DeleteItems(ctx context.Context, wishlistID string) error
}

// Catalog prices wishlist products.
type Catalog interface {
	QueryByIDs(ctx context.Context, ids []string) ([]product.Product, error)
}

type Core struct {
	log     logrus.FieldLogger
	store   Storer
	catalog Catalog
	now     func() time.Time
}

func NewCore(log logrus.FieldLogger, store Storer, catalog Catalog) *Core {
	return &Core{
		log:     log,
		store:   store,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Resolve returns the wishlist of o, creating it on first use.
func (c *Core) Resolve(ctx context.Context, o owner.Owner) (*Handle, error) {
	if o.IsZero() {
		return nil, ErrInvalidOwner
	}

	for i := 0; i < resolveAttempts; i++ {
		w, err := c.store.QueryByOwner(ctx, o)
		if err == nil {
			return c.handle(w), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("query: owner[%s]: %w", o, err)
		}

		if w, err = c.create(ctx, c.store, o); err == nil {
			return c.handle(w), nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("create: owner[%s]: %w", o, err)
		}

		c.log.WithField("owner", o.String()).Debug("lost wishlist creation race, fetching again")
	}

	return nil, fmt.Errorf("resolve: owner[%s]: %w", o, ErrConflict)
}

// Lookup returns the wishlist of o without creating one.
func (c *Core) Lookup(ctx context.Context, o owner.Owner) (*Handle, error) {
	if o.IsZero() {
		return nil, ErrInvalidOwner
	}

	w, err := c.store.QueryByOwner(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("query: owner[%s]: %w", o, err)
	}
	return c.handle(w), nil
}

func (c *Core) create(ctx context.Context, s Storer, o owner.Owner) (Wishlist, error) {
	now := c.now()
	w := Wishlist{
		ID:        validate.GenerateID(),
		Owner:     o,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Create(ctx, w); err != nil {
		return Wishlist{}, err
	}
	return w, nil
}

func (c *Core) handle(w Wishlist) *Handle {
	return &Handle{core: c, wishlist: w}
}
