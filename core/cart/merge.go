package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

var ErrMergeFailed = errors.New("cart merge failed")

// errNothingToMerge ends a merge transaction whose session cart vanished
// between lookup and lock.
var errNothingToMerge = errors.New("nothing to merge")

// MergeError reports a merge that was rolled back. The session cart is left
// as it was and the merge may be retried.
type MergeError struct {
	UserID string
	CartID string
	Err    error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merging cart[%s] into user[%s]: %v", e.CartID, e.UserID, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

func (e *MergeError) Is(target error) bool { return target == ErrMergeFailed }

// Merge moves the lines of the active cart of the anonymous session token
// into the cart of userID and retires the session cart, all in one
// transaction. A session without a cart, or whose cart was already merged,
// is not an error. Lines present in both carts keep the user cart price
// snapshot and add up their quantities, capped at MaxQuantity.
func (c *Core) Merge(ctx context.Context, userID string, token string) error {
	if token == "" || userID == "" {
		return nil
	}

	log := c.log.WithField("user_id", userID)

	sess, err := c.store.QueryByOwner(ctx, owner.Session(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("cart merge skipped: session cart lookup failed")
		}
		return nil
	}
	log = log.WithField("cart_id", sess.ID)

	var moved, summed int
	err = c.store.WithinTran(ctx, func(s Storer) error {
		sess, err := s.Lock(ctx, sess.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return errNothingToMerge
			}
			return fmt.Errorf("lock session cart: %w", err)
		}

		usr, err := c.lockOrCreate(ctx, s, owner.User(userID))
		if err != nil {
			return fmt.Errorf("user cart: %w", err)
		}

		now := c.now()

		if usr.ID != sess.ID {
			src, err := s.QueryItems(ctx, sess.ID)
			if err != nil {
				return fmt.Errorf("query session items: %w", err)
			}
			dst, err := s.QueryItems(ctx, usr.ID)
			if err != nil {
				return fmt.Errorf("query user items: %w", err)
			}

			updates, inserts := mergeLines(usr.ID, dst, src)
			for _, it := range updates {
				it.UpdatedAt = now
				if err := s.UpdateItem(ctx, it); err != nil {
					return fmt.Errorf("update item[%s]: %w", it.ProductID, err)
				}
			}
			for _, it := range inserts {
				it.UpdatedAt = now
				if err := s.CreateItem(ctx, it); err != nil {
					return fmt.Errorf("create item[%s]: %w", it.ProductID, err)
				}
			}
			moved, summed = len(inserts), len(updates)

			if err := s.Touch(ctx, usr.ID, now); err != nil {
				return fmt.Errorf("touch user cart: %w", err)
			}
		}

		if err := s.Retire(ctx, sess.ID, now); err != nil {
			return fmt.Errorf("retire session cart: %w", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, errNothingToMerge):
		log.Debug("cart merge skipped: session cart already retired")
		return nil
	case err != nil:
		return &MergeError{UserID: userID, CartID: sess.ID, Err: err}
	}

	log.WithFields(logrus.Fields{
		"moved":  moved,
		"summed": summed,
	}).Info("merged session cart")
	return nil
}

// lockOrCreate returns the locked active cart of o, creating it if needed.
func (c *Core) lockOrCreate(ctx context.Context, s Storer, o owner.Owner) (Cart, error) {
	for i := 0; i < resolveAttempts; i++ {
		crt, err := s.QueryByOwner(ctx, o)
		switch {
		case err == nil:
			return s.Lock(ctx, crt.ID)
		case !errors.Is(err, ErrNotFound):
			return Cart{}, err
		}

		now := c.now()
		crt = Cart{
			ID:        validate.GenerateID(),
			Owner:     o,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.Create(ctx, crt)
		switch {
		case err == nil:
			return s.Lock(ctx, crt.ID)
		case !errors.Is(err, ErrConflict):
			return Cart{}, err
		}
	}
	return Cart{}, ErrConflict
}

// mergeLines folds the src lines into the dst lines of cart cartID. It
// returns the dst lines whose quantity grew and the src lines to copy.
func mergeLines(cartID string, dst []Item, src []Item) (updates []Item, inserts []Item) {
	idx := make(map[string]int, len(dst))
	for i, it := range dst {
		idx[it.ProductID] = i
	}

	for _, it := range src {
		if i, ok := idx[it.ProductID]; ok {
			d := dst[i]
			d.Quantity += it.Quantity
			if d.Quantity > MaxQuantity {
				d.Quantity = MaxQuantity
			}
			dst[i] = d
			updates = append(updates, d)
			continue
		}

		it.CartID = cartID
		inserts = append(inserts, it)
	}

	return updates, inserts
}
