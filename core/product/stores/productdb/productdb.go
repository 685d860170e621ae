// Package productdb keeps products and their price history in postgres.
package productdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
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

func (s *Store) WithinTran(ctx context.Context, fn func(s product.Storer) error) error {
	if s.tx == nil {
		return fn(s)
	}
	return database.Transaction(ctx, s.tx, func(tx sqlx.ExtContext) error {
		return fn(&Store{log: s.log, db: tx})
	})
}

func (s *Store) Create(ctx context.Context, p product.Product) error {
	const q = `
	INSERT INTO products
		(product_id, subcategory_id, name, slug, description, price, stock_quantity, sku, created_at, updated_at)
	VALUES
		(:product_id, :subcategory_id, :name, :slug, :description, :price, :stock_quantity, :sku, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, p); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return product.ErrUniqueSlug
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, p product.Product) error {
	const q = `
	UPDATE products SET
		subcategory_id = :subcategory_id,
		name = :name,
		description = :description,
		price = :price,
		stock_quantity = :stock_quantity,
		sku = :sku,
		updated_at = :updated_at
	WHERE product_id = :product_id`

	n, err := database.NamedExecContext(ctx, s.db, q, p)
	if err != nil {
		return fmt.Errorf("updating product[%s]: %w", p.ID, err)
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (s *Store) QueryByID(ctx context.Context, id string) (product.Product, error) {
	const q = `
	SELECT * FROM products
	WHERE product_id = :product_id`

	return s.queryOne(ctx, q, map[string]any{"product_id": id})
}

func (s *Store) QueryBySlug(ctx context.Context, slug string) (product.Product, error) {
	const q = `
	SELECT * FROM products
	WHERE slug = :slug`

	return s.queryOne(ctx, q, map[string]any{"slug": slug})
}

func (s *Store) QueryByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	const q = `
	SELECT * FROM products
	WHERE product_id = ANY(CAST(:ids AS UUID[]))
	ORDER BY name`

	var ps []product.Product
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{"ids": pq.Array(ids)}, &ps); err != nil {
		return nil, fmt.Errorf("selecting products by ids: %w", err)
	}
	return ps, nil
}

func (s *Store) Query(ctx context.Context, filter product.Filter, orderBy product.OrderBy, page int, rows int) ([]product.Product, error) {
	data := map[string]any{
		"offset": (page - 1) * rows,
		"rows":   rows,
	}

	buf := bytes.NewBufferString(`
	SELECT p.* FROM products p`)
	applyFilter(filter, data, buf)
	fmt.Fprintf(buf, " ORDER BY p.%s %s, p.product_id", orderBy.Field, orderBy.Direction)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows ROWS ONLY")

	var ps []product.Product
	if err := database.NamedQuerySlice(ctx, s.db, buf.String(), data, &ps); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}
	return ps, nil
}

func (s *Store) Count(ctx context.Context, filter product.Filter) (int, error) {
	data := map[string]any{}

	buf := bytes.NewBufferString(`
	SELECT count(1) AS count FROM products p`)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := database.NamedQueryStruct(ctx, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return count.Count, nil
}

func (s *Store) AddPriceHistory(ctx context.Context, pp product.PricePoint) error {
	const q = `
	INSERT INTO price_history
		(product_id, price, changed_at)
	VALUES
		(:product_id, :price, :changed_at)`

	if _, err := database.NamedExecContext(ctx, s.db, q, pp); err != nil {
		return fmt.Errorf("inserting price history: %w", err)
	}
	return nil
}

func (s *Store) QueryPriceHistory(ctx context.Context, productID string) ([]product.PricePoint, error) {
	const q = `
	SELECT product_id, price, changed_at FROM price_history
	WHERE product_id = :product_id
	ORDER BY changed_at DESC, price_history_id DESC`

	var pps []product.PricePoint
	if err := database.NamedQuerySlice(ctx, s.db, q, map[string]any{"product_id": productID}, &pps); err != nil {
		return nil, fmt.Errorf("selecting price history: %w", err)
	}
	return pps, nil
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (product.Product, error) {
	var p product.Product
	if err := database.NamedQueryStruct(ctx, s.db, q, data, &p); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, fmt.Errorf("selecting product: %w", err)
	}
	return p, nil
}

func applyFilter(filter product.Filter, data map[string]any, buf *bytes.Buffer) {
	if filter.SubCategorySlug != "" {
		data["subcategory_slug"] = filter.SubCategorySlug
		buf.WriteString(`
	JOIN subcategories sc ON sc.subcategory_id = p.subcategory_id
	WHERE sc.slug = :subcategory_slug`)
	}
}
