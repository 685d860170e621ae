// Package categorydb keeps categories and sub categories in postgres.
package categorydb

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/storefront/core/category"
	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Store struct {
	log logrus.FieldLogger
	db  sqlx.ExtContext
}

func NewStore(log logrus.FieldLogger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, c category.Category) error {
	const q = `
	INSERT INTO categories
		(category_id, name, slug, created_at, updated_at)
	VALUES
		(:category_id, :name, :slug, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, c); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return category.ErrUniqueSlug
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (s *Store) CreateSub(ctx context.Context, sc category.SubCategory) error {
	const q = `
	INSERT INTO subcategories
		(subcategory_id, category_id, name, slug, created_at, updated_at)
	VALUES
		(:subcategory_id, :category_id, :name, :slug, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, sc); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return category.ErrUniqueSlug
		}
		return fmt.Errorf("inserting subcategory: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context) ([]category.Category, error) {
	const q = `
	SELECT * FROM categories
	ORDER BY name`

	var cats []category.Category
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{}, &cats); err != nil {
		return nil, fmt.Errorf("selecting categories: %w", err)
	}
	return cats, nil
}

func (s *Store) QueryBySlug(ctx context.Context, slug string) (category.Category, error) {
	const q = `
	SELECT * FROM categories
	WHERE slug = :slug`

	var c category.Category
	if err := database.NamedQueryStruct(ctx, s.db, q, map[string]any{"slug": slug}, &c); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, fmt.Errorf("selecting category[%s]: %w", slug, err)
	}
	return c, nil
}

func (s *Store) QuerySubs(ctx context.Context, categoryID string) ([]category.SubCategory, error) {
	const q = `
	SELECT * FROM subcategories
	WHERE category_id = :category_id
	ORDER BY name`

	var subs []category.SubCategory
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{"category_id": categoryID}, &subs); err != nil {
		return nil, fmt.Errorf("selecting subcategories of category[%s]: %w", categoryID, err)
	}
	return subs, nil
}
