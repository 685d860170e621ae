package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"id" db:"product_id"`
	SubCategoryID string          `json:"subcategoryId" db:"subcategory_id"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stockQuantity" db:"stock_quantity"`
	SKU           *int            `json:"sku,omitempty" db:"sku"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

type ProductNew struct {
	SubCategoryID string          `json:"subcategoryId" validate:"required,uuid4"`
	Name          string          `json:"name" validate:"required,min=5,max=100"`
	Slug          string          `json:"slug" validate:"omitempty,max=100"`
	Description   string          `json:"description" validate:"required,max=500"`
	Price         decimal.Decimal `json:"price" validate:"gte=0,lte=99999999"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	SKU           *int            `json:"sku" validate:"omitempty,gte=0"`
}

type ProductUp struct {
	SubCategoryID *string          `json:"subcategoryId" validate:"omitempty,uuid4"`
	Name          *string          `json:"name" validate:"omitempty,min=5,max=100"`
	Description   *string          `json:"description" validate:"omitempty,max=500"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=99999999"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
	SKU           *int             `json:"sku" validate:"omitempty,gte=0"`
}

// PricePoint is a price a product had before it was changed.
type PricePoint struct {
	ProductID string          `json:"productId" db:"product_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	ChangedAt time.Time       `json:"changedAt" db:"changed_at"`
}

// Detail decorates a product with its previous higher price, if any.
type Detail struct {
	Product
	OldPrice        *decimal.Decimal `json:"oldPrice,omitempty"`
	DiscountPercent int              `json:"discountPercent"`
}

// OldPrice returns the most recent historic price that differs from
// current, provided it was higher. history must be ordered newest first.
func OldPrice(history []PricePoint, current decimal.Decimal) (decimal.Decimal, bool) {
	for _, p := range history {
		if p.Price.Equal(current) {
			continue
		}
		if p.Price.GreaterThan(current) {
			return p.Price, true
		}
		return decimal.Decimal{}, false
	}
	return decimal.Decimal{}, false
}

// DiscountPercent is the rounded percentage current is below old.
func DiscountPercent(old, current decimal.Decimal) int {
	if !old.IsPositive() || !old.GreaterThan(current) {
		return 0
	}
	pct := old.Sub(current).Div(old).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
