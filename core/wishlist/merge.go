package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/sirupsen/logrus"
)

var ErrMergeFailed = errors.New("wishlist merge failed")

var errNothingToMerge = errors.New("nothing to merge")

// MergeError reports a merge that was rolled back. The session wishlist is
// left as it was.
type MergeError struct {
	UserID     string
	WishlistID string
	Err        error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merging wishlist[%s] into user[%s]: %v", e.WishlistID, e.UserID, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

func (e *MergeError) Is(target error) bool { return target == ErrMergeFailed }

// Merge adds every product of the anonymous session wishlist to the
// wishlist of userID and deletes the session wishlist, in one transaction.
// A session without a wishlist is not an error.
func (c *Core) Merge(ctx context.Context, userID string, token string) error {
	if token == "" || userID == "" {
		return nil
	}

	log := c.log.WithField("user_id", userID)

	sess, err := c.store.QueryByOwner(ctx, owner.Session(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("wishlist merge skipped: session wishlist lookup failed")
		}
		return nil
	}
	log = log.WithField("wishlist_id", sess.ID)

	var added int
	err = c.store.WithinTran(ctx, func(s Storer) error {
		if _, err := s.Lock(ctx, sess.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errNothingToMerge
			}
			return fmt.Errorf("lock session wishlist: %w", err)
		}

		usr, err := c.lockOrCreate(ctx, s, owner.User(userID))
		if err != nil {
			return fmt.Errorf("user wishlist: %w", err)
		}

		items, err := s.QueryItems(ctx, sess.ID)
		if err != nil {
			return fmt.Errorf("query session items: %w", err)
		}

		now := c.now()
		for _, it := range items {
			it.WishlistID = usr.ID
			ok, err := s.AddItem(ctx, it)
			if err != nil {
				return fmt.Errorf("add item[%s]: %w", it.ProductID, err)
			}
			if ok {
				added++
			}
		}

		if err := s.Touch(ctx, usr.ID, now); err != nil {
			return fmt.Errorf("touch user wishlist: %w", err)
		}
		if err := s.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session wishlist: %w", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, errNothingToMerge):
		log.Debug("wishlist merge skipped: session wishlist already gone")
		return nil
	case err != nil:
		return &MergeError{UserID: userID, WishlistID: sess.ID, Err: err}
	}

	log.WithFields(logrus.Fields{
		"added": added,
	}).Info("merged session wishlist")
	return nil
}

func (c *Core) lockOrCreate(ctx context.Context, s Storer, o owner.Owner) (Wishlist, error) {
	for i := 0; i < resolveAttempts; i++ {
		w, err := s.QueryByOwner(ctx, o)
		switch {
		case err == nil:
			return s.Lock(ctx, w.ID)
		case !errors.Is(err, ErrNotFound):
			return Wishlist{}, err
		}

		w, err = c.create(ctx, s, o)
		switch {
		case err == nil:
			return s.Lock(ctx, w.ID)
		case !errors.Is(err, ErrConflict):
			return Wishlist{}, err
		}
	}
	return Wishlist{}, ErrConflict
}
