package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/core/product"
	"github.com/shopspring/decimal"
)

// Handle operates on one resolved cart. Mutations run in a transaction that
// holds the cart row lock, so they serialize with a merge touching the cart.
type Handle struct {
	core *Core
	cart Cart
}

func (h *Handle) Cart() Cart { return h.cart }

func (h *Handle) ID() string { return h.cart.ID }

// Add puts quantity units of p in the cart. An existing line keeps its
// price snapshot; a new one captures the current product price.
func (h *Handle) Add(ctx context.Context, p product.Product, quantity int) (Item, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return Item{}, ErrInvalidQuantity
	}

	var it Item
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		existing, err := s.QueryItem(ctx, h.cart.ID, p.ID)
		if errors.Is(err, ErrNotFound) {
			it = Item{
				CartID:    h.cart.ID,
				ProductID: p.ID,
				Quantity:  quantity,
				Price:     p.Price,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return s.CreateItem(ctx, it)
		}
		if err != nil {
			return err
		}

		if existing.Quantity+quantity > MaxQuantity {
			return ErrInvalidQuantity
		}
		existing.Quantity += quantity
		existing.UpdatedAt = now
		it = existing

		return s.UpdateItem(ctx, existing)
	})
	if err != nil {
		return Item{}, fmt.Errorf("adding product[%s] to cart[%s]: %w", p.ID, h.cart.ID, err)
	}

	return it, nil
}

// Remove deletes the line of productID. Removing a product that is not in
// the cart is a no-op.
func (h *Handle) Remove(ctx context.Context, productID string) error {
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		err := s.DeleteItem(ctx, h.cart.ID, productID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("removing product[%s] from cart[%s]: %w", productID, h.cart.ID, err)
	}
	return nil
}

// Decrement lowers the quantity of productID by n, deleting the line when
// nothing is left.
func (h *Handle) Decrement(ctx context.Context, productID string, n int) error {
	if n < 1 {
		return ErrInvalidQuantity
	}

	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		it, err := s.QueryItem(ctx, h.cart.ID, productID)
		if err != nil {
			return err
		}

		it.Quantity -= n
		if it.Quantity <= 0 {
			return s.DeleteItem(ctx, h.cart.ID, productID)
		}
		it.UpdatedAt = now

		return s.UpdateItem(ctx, it)
	})
	if err != nil {
		return fmt.Errorf("decrementing product[%s] in cart[%s]: %w", productID, h.cart.ID, err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity below 1
// removes the line.
func (h *Handle) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return h.Remove(ctx, productID)
	}
	if quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		it, err := s.QueryItem(ctx, h.cart.ID, productID)
		if err != nil {
			return err
		}

		it.Quantity = quantity
		it.UpdatedAt = now

		return s.UpdateItem(ctx, it)
	})
	if err != nil {
		return fmt.Errorf("updating product[%s] in cart[%s]: %w", productID, h.cart.ID, err)
	}
	return nil
}

// Clear empties the cart; the cart itself stays.
func (h *Handle) Clear(ctx context.Context) error {
	err := h.mutate(ctx, func(s Storer, now time.Time) error {
		return s.DeleteItems(ctx, h.cart.ID)
	})
	if err != nil {
		return fmt.Errorf("clearing cart[%s]: %w", h.cart.ID, err)
	}
	return nil
}

func (h *Handle) Items(ctx context.Context) ([]Item, error) {
	items, err := h.core.store.QueryItems(ctx, h.cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query items: cart[%s]: %w", h.cart.ID, err)
	}
	return items, nil
}

func (h *Handle) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return TotalPrice(items), nil
}

func (h *Handle) TotalQuantity(ctx context.Context) (int, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return 0, err
	}
	return TotalQuantity(items), nil
}

// Count is the number of distinct products in the cart.
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

func (h *Handle) Summary(ctx context.Context) (Summary, error) {
	items, err := h.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(h.cart, items), nil
}

func (h *Handle) mutate(ctx context.Context, fn func(s Storer, now time.Time) error) error {
	return h.core.store.WithinTran(ctx, func(s Storer) error {
		if _, err := s.Lock(ctx, h.cart.ID); err != nil {
			return fmt.Errorf("lock: %w", err)
		}

		now := h.core.now()
		if err := fn(s, now); err != nil {
			return err
		}

		if err := s.Touch(ctx, h.cart.ID, now); err != nil {
			return fmt.Errorf("touch: %w", err)
		}
		h.cart.UpdatedAt = now
		return nil
	})
}
