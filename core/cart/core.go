// Package cart keeps the shopping cart of a signed in user or of an
// anonymous visitor, and folds the latter into the former at login.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")
	ErrNotFound        = errors.New("cart or cart item not found")
	ErrConflict        = errors.New("cart already exists for owner")
	ErrInvalidOwner    = owner.ErrInvalid
)

// resolveAttempts bounds how many creation races Resolve absorbs.
const resolveAttempts = 3

// Storer is the persistence the cart core needs. Every method reports a
// missing row as ErrNotFound. Create reports an owner that already has an
// active cart as ErrConflict without poisoning a surrounding transaction.
type Storer interface {
	WithinTran(ctx context.Context, fn func(s Storer) error) error
	Create(ctx context.Context, c Cart) error
	QueryByOwner(ctx context.Context, o owner.Owner) (Cart, error)
	Lock(ctx context.Context, cartID string) (Cart, error)
	Touch(ctx context.Context, cartID string, now time.Time) error
	Retire(ctx context.Context, cartID string, now time.Time) error
	QueryItems(ctx context.Context, cartID string) ([]Item, error)
	QueryItem(ctx context.Context, cartID string, productID string) (Item, error)
	CreateItem(ctx context.Context, it Item) error
	UpdateItem(ctx context.Context, it Item) error
	DeleteItem(ctx context.Context, cartID string, productID string) error
	DeleteItems(ctx context.Context, cartID string) error
}

type Core struct {
	log   logrus.FieldLogger
	store Storer
	now   func() time.Time
}

func NewCore(log logrus.FieldLogger, store Storer) *Core {
	return &Core{
		log:   log,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Resolve returns the active cart of o, creating it on first use. Losing a
// creation race to a concurrent request re-fetches the winner's cart.
func (c *Core) Resolve(ctx context.Context, o owner.Owner) (*Handle, error) {
	if o.IsZero() {
		return nil, ErrInvalidOwner
	}

	for i := 0; i < resolveAttempts; i++ {
		crt, err := c.store.QueryByOwner(ctx, o)
		if err == nil {
			return c.handle(crt), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("query: owner[%s]: %w", o, err)
		}

		now := c.now()
		crt = Cart{
			ID:        validate.GenerateID(),
			Owner:     o,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = c.store.Create(ctx, crt)
		if err == nil {
			return c.handle(crt), nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("create: owner[%s]: %w", o, err)
		}

		c.log.WithField("owner", o.String()).Debug("lost cart creation race, fetching again")
	}

	return nil, fmt.Errorf("resolve: owner[%s]: %w", o, ErrConflict)
}

// Lookup returns the active cart of o without creating one.
func (c *Core) Lookup(ctx context.Context, o owner.Owner) (*Handle, error) {
	if o.IsZero() {
		return nil, ErrInvalidOwner
	}

	crt, err := c.store.QueryByOwner(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("query: owner[%s]: %w", o, err)
	}
	return c.handle(crt), nil
}

func (c *Core) handle(crt Cart) *Handle {
	return &Handle{core: c, cart: crt}
}
