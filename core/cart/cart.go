package cart

import (
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/shopspring/decimal"
)

// MaxQuantity bounds the quantity of a single cart line.
const MaxQuantity = 100

type Cart struct {
	ID        string
	Owner     owner.Owner
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	RetiredAt *time.Time
}

// Item is one product within a cart. Price is the product price captured
// when the line was first added.
type Item struct {
	CartID    string          `json:"-"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (it Item) Cost() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type ItemNew struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=100"`
}

type ItemUp struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=100"`
}

type ItemDecrement struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=100"`
}

// Summary is a cart with its computed totals.
type Summary struct {
	Items         []Item          `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
	ItemsCount    int             `json:"itemsCount"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Cost())
	}
	return total
}

func TotalQuantity(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func summarize(c Cart, items []Item) Summary {
	if items == nil {
		items = []Item{}
	}
	return Summary{
		Items:         items,
		TotalPrice:    TotalPrice(items),
		TotalQuantity: TotalQuantity(items),
		ItemsCount:    len(items),
		UpdatedAt:     c.UpdatedAt,
	}
}
