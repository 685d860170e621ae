// Package product is the read mostly catalog the cart and the wishlist
// price their lines from.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/storefront/random"
	"github.com/irsalhamdi/storefront/slug"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrUniqueSlug = errors.New("slug already in use")
)

const slugAttempts = 3

type Storer interface {
	WithinTran(ctx context.Context, fn func(s Storer) error) error
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	QueryByID(ctx context.Context, id string) (Product, error)
	QueryBySlug(ctx context.Context, slug string) (Product, error)
	QueryByIDs(ctx context.Context, ids []string) ([]Product, error)
	Query(ctx context.Context, filter Filter, orderBy OrderBy, page int, rows int) ([]Product, error)
	Count(ctx context.Context, filter Filter) (int, error)
	AddPriceHistory(ctx context.Context, pp PricePoint) error
	QueryPriceHistory(ctx context.Context, productID string) ([]PricePoint, error)
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

// Create adds a product. Without an explicit slug one is derived from the
// name; a derived slug that is taken gets a random suffix.
func (c *Core) Create(ctx context.Context, np ProductNew) (Product, error) {
	now := c.now()
	p := Product{
		ID:            validate.GenerateID(),
		SubCategoryID: np.SubCategoryID,
		Name:          np.Name,
		Slug:          np.Slug,
		Description:   np.Description,
		Price:         np.Price.Round(2),
		StockQuantity: np.StockQuantity,
		SKU:           np.SKU,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	derived := p.Slug == ""
	if derived {
		p.Slug = slug.Make(p.Name)
	}

	base := p.Slug
	for i := 0; ; i++ {
		err := c.store.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrUniqueSlug) || !derived || i+1 == slugAttempts {
			return Product{}, fmt.Errorf("create: %w", err)
		}
		p.Slug = slug.WithSuffix(base, random.String(4))
	}
}

// Update applies up to the product. A price change records the previous
// price in the history within the same transaction.
func (c *Core) Update(ctx context.Context, id string, up ProductUp) (Product, error) {
	var p Product
	err := c.store.WithinTran(ctx, func(s Storer) error {
		var err error
		if p, err = s.QueryByID(ctx, id); err != nil {
			return fmt.Errorf("query: %w", err)
		}

		now := c.now()

		if up.Price != nil && !up.Price.Round(2).Equal(p.Price) {
			pp := PricePoint{
				ProductID: p.ID,
				Price:     p.Price,
				ChangedAt: now,
			}
			if err := s.AddPriceHistory(ctx, pp); err != nil {
				return fmt.Errorf("recording price history: %w", err)
			}
			p.Price = up.Price.Round(2)
		}
		if up.SubCategoryID != nil {
			p.SubCategoryID = *up.SubCategoryID
		}
		if up.Name != nil {
			p.Name = *up.Name
		}
		if up.Description != nil {
			p.Description = *up.Description
		}
		if up.StockQuantity != nil {
			p.StockQuantity = *up.StockQuantity
		}
		if up.SKU != nil {
			p.SKU = up.SKU
		}
		p.UpdatedAt = now

		if err := s.Update(ctx, p); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("updating product[%s]: %w", id, err)
	}

	return p, nil
}

func (c *Core) QueryByID(ctx context.Context, id string) (Product, error) {
	p, err := c.store.QueryByID(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("query: product[%s]: %w", id, err)
	}
	return p, nil
}

func (c *Core) QueryByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ps, err := c.store.QueryByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return ps, nil
}

// QueryDetail finds a product by slug along with its discount.
func (c *Core) QueryDetail(ctx context.Context, productSlug string) (Detail, error) {
	p, err := c.store.QueryBySlug(ctx, productSlug)
	if err != nil {
		return Detail{}, fmt.Errorf("query: slug[%s]: %w", productSlug, err)
	}

	history, err := c.store.QueryPriceHistory(ctx, p.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("query history: product[%s]: %w", p.ID, err)
	}

	d := Detail{Product: p}
	if old, ok := OldPrice(history, p.Price); ok {
		d.OldPrice = &old
		d.DiscountPercent = DiscountPercent(old, p.Price)
	}
	return d, nil
}

func (c *Core) Query(ctx context.Context, filter Filter, orderBy OrderBy, page int, rows int) ([]Product, error) {
	ps, err := c.store.Query(ctx, filter, orderBy, page, rows)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return ps, nil
}

func (c *Core) Count(ctx context.Context, filter Filter) (int, error) {
	return c.store.Count(ctx, filter)
}

func (c *Core) QueryPriceHistory(ctx context.Context, productID string) ([]PricePoint, error) {
	if _, err := c.store.QueryByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("query: product[%s]: %w", productID, err)
	}
	return c.store.QueryPriceHistory(ctx, productID)
}
