package wishlist

import (
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/shopspring/decimal"
)

type Wishlist struct {
	ID        string
	Owner     owner.Owner
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	WishlistID string    `json:"-"`
	ProductID  string    `json:"productId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summary is a wishlist expanded to its products.
type Summary struct {
	Products   []product.Product `json:"products"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Count      int               `json:"count"`
}

// Toggled reports what a toggle did.
type Toggled struct {
	ProductID string `json:"productId"`
	Added     bool   `json:"added"`
}

func productIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

func totalPrice(ps []product.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.Price)
	}
	return total
}
