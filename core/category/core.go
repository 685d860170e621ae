// Package category groups products into categories and sub categories.
package category

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
	ErrNotFound   = errors.New("category not found")
	ErrUniqueSlug = errors.New("slug already in use")
)

const slugAttempts = 3

type Storer interface {
	Create(ctx context.Context, c Category) error
	CreateSub(ctx context.Context, sc SubCategory) error
	Query(ctx context.Context) ([]Category, error)
	QueryBySlug(ctx context.Context, slug string) (Category, error)
	QuerySubs(ctx context.Context, categoryID string) ([]SubCategory, error)
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

func (c *Core) Create(ctx context.Context, nc CategoryNew) (Category, error) {
	now := c.now()
	cat := Category{
		ID:        validate.GenerateID(),
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := withSlug(nc.Name, func(s string) error {
		cat.Slug = s
		return c.store.Create(ctx, cat)
	})
	if err != nil {
		return Category{}, fmt.Errorf("create: %w", err)
	}
	return cat, nil
}

// CreateSub adds a sub category under the category named by categorySlug.
func (c *Core) CreateSub(ctx context.Context, categorySlug string, ns SubCategoryNew) (SubCategory, error) {
	cat, err := c.store.QueryBySlug(ctx, categorySlug)
	if err != nil {
		return SubCategory{}, fmt.Errorf("query: slug[%s]: %w", categorySlug, err)
	}

	now := c.now()
	sc := SubCategory{
		ID:         validate.GenerateID(),
		CategoryID: cat.ID,
		Name:       ns.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = withSlug(ns.Name, func(s string) error {
		sc.Slug = s
		return c.store.CreateSub(ctx, sc)
	})
	if err != nil {
		return SubCategory{}, fmt.Errorf("create sub: %w", err)
	}
	return sc, nil
}

func (c *Core) Query(ctx context.Context) ([]Category, error) {
	cats, err := c.store.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return cats, nil
}

func (c *Core) QueryDetail(ctx context.Context, categorySlug string) (Detail, error) {
	cat, err := c.store.QueryBySlug(ctx, categorySlug)
	if err != nil {
		return Detail{}, fmt.Errorf("query: slug[%s]: %w", categorySlug, err)
	}

	subs, err := c.store.QuerySubs(ctx, cat.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("query subs: category[%s]: %w", cat.ID, err)
	}
	if subs == nil {
		subs = []SubCategory{}
	}

	return Detail{Category: cat, SubCategories: subs}, nil
}

// withSlug calls create with a slug derived from name, retrying with a
// random suffix while the slug is taken.
func withSlug(name string, create func(slug string) error) error {
	base := slug.Make(name)
	s := base
	for i := 0; ; i++ {
		err := create(s)
		if err == nil || !errors.Is(err, ErrUniqueSlug) || i+1 == slugAttempts {
			return err
		}
		s = slug.WithSuffix(base, random.String(4))
	}
}
