package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SeedUser inserts a plain user and returns its id.
func SeedUser(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()

	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, created_at, updated_at)
	VALUES
		($1, $2, $3, 'USER', '-', $4, $4)`

	if _, err := db.ExecContext(context.Background(), q, id, "Seed User", id+"@example.com", now); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return id
}

// SeedProducts inserts n products under a fresh category and returns their
// ids in insertion order. Product i costs i+1.
func SeedProducts(t *testing.T, db *sqlx.DB, n int) []string {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	catID, subID := uuid.NewString(), uuid.NewString()

	if _, err := db.ExecContext(ctx, `
	INSERT INTO categories (category_id, name, slug, created_at, updated_at)
	VALUES ($1, 'Seeded', $2, $3, $3)`, catID, "seeded-"+catID[:8], now); err != nil {
		t.Fatalf("seeding category: %v", err)
	}

	if _, err := db.ExecContext(ctx, `
	INSERT INTO subcategories (subcategory_id, category_id, name, slug, created_at, updated_at)
	VALUES ($1, $2, 'Seeded', $3, $4, $4)`, subID, catID, "seeded-"+subID[:8], now); err != nil {
		t.Fatalf("seeding subcategory: %v", err)
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		if _, err := db.ExecContext(ctx, `
		INSERT INTO products (product_id, subcategory_id, name, slug, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $6, $6)`,
			ids[i], subID, fmt.Sprintf("Product %d", i), "product-"+ids[i][:8], i+1, now); err != nil {
			t.Fatalf("seeding product: %v", err)
		}
	}
	return ids
}
