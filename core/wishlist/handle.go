package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/product"
	"github.com/shopspring/decimal"
)

// Handle operates on one resolved wishlist.
type Handle struct {
	core     *Core
	wishlist Wishlist
}

func (h *Handle) Wishlist() Wishlist { return h.wishlist }

func (h *Handle) ID() string { return h.wishlist.ID }

// Add puts productID in the wishlist. Adding a product twice is a no-op.
func (h *Handle) Add(ctx context.Context, productID string) error {
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		_, err := s.AddItem(ctx, Item{WishlistID: h.wishlist.ID, ProductID: productID, CreatedAt: now})
		return err
	})
	if err != nil {
		return fmt.Errorf("adding product[%s] to wishlist[%s]: %w", productID, h.wishlist.ID, err)
	}
	return nil
}

// Remove takes productID out of the wishlist. Removing a product that is
// not there is a no-op.
func (h *Handle) Remove(ctx context.Context, productID string) error {
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		err := s.DeleteItem(ctx, h.wishlist.ID, productID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("removing product[%s] from wishlist[%s]: %w", productID, h.wishlist.ID, err)
	}
	return nil
}

// Toggle adds productID when absent and removes it when present. It
// reports whether the product ended up in the wishlist.
func (h *Handle) Toggle(ctx context.Context, productID string) (bool, error) {
	var added bool
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		err := s.DeleteItem(ctx, h.wishlist.ID, productID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		added, err = s.AddItem(ctx, Item{WishlistID: h.wishlist.ID, ProductID: productID, CreatedAt: now})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("toggling product[%s] in wishlist[%s]: %w", productID, h.wishlist.ID, err)
	}
	return added, nil
}

func (h *Handle) Clear(ctx context.Context) error {
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		return s.DeleteItems(ctx, h.wishlist.ID)
	})
	if err != nil {
		return fmt.Errorf("clearing wishlist[%s]: %w", h.wishlist.ID, err)
	}
	return nil
}

func (h *Handle) Items(ctx context.Context) ([]Item, error) {
	items, err := h.core.store.QueryItems(ctx, h.wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("query items: wishlist[%s]: %w", h.wishlist.ID, err)
	}
	return items, nil
}

func (h *Handle) ProductIDs(ctx context.Context) ([]string, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return nil, err
	}
	return productIDs(items), nil
}

func (h *Handle) Contains(ctx context.Context, productID string) (bool, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (h *Handle) Count(ctx context.Context) (int, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (h *Handle) IsEmpty(ctx context.Context) (bool, error) {
	n, err := h.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Products returns the wishlisted products at their current price.
func (h *Handle) Products(ctx context.Context) ([]product.Product, error) {
	ids, err := h.ProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	ps, err := h.core.catalog.QueryByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: wishlist[%s]: %w", h.wishlist.ID, err)
	}
	return ps, nil
}

// TotalPrice is the sum of the current prices of the wishlisted products.
func (h *Handle) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	ps, err := h.Products(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return totalPrice(ps), nil
}

func (h *Handle) Summary(ctx context.Context) (Summary, error) {
	ps, err := h.Products(ctx)
	if err != nil {
		return Summary{}, err
	}
	if ps == nil {
		ps = []product.Product{}
	}
	return Summary{
		Products:   ps,
		TotalPrice: totalPrice(ps),
		Count:      len(ps),
	}, nil
}

func (h *Handle) mutate(ctx context.Context, fn func(s Storer, now time.Time) error) error {
	return h.core.store.WithinTran(ctx, func(s Storer) error {
		if _, err := s.Lock(ctx, h.wishlist.ID); err != nil {
			return fmt.Errorf("lock: %w", err)
		}

		now := h.core.now()
		if err := fn(s, now); err != nil {
			return err
		}

		if err := s.Touch(ctx, h.wishlist.ID, now); err != nil {
			return fmt.Errorf("touch: %w", err)
		}
		h.wishlist.UpdatedAt = now
		return nil
	})
}
