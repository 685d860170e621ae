package product

import "strings"

const (
	OrderByName      = "name"
	OrderByPrice     = "price"
	OrderByCreatedAt = "created_at"

	ASC  = "ASC"
	DESC = "DESC"
)

var DefaultOrderBy = OrderBy{Field: OrderByName, Direction: ASC}

type OrderBy struct {
	Field     string
	Direction string
}

// ParseOrder maps the sort and direction query parameters onto an OrderBy,
// falling back to the default for anything it does not recognise.
func ParseOrder(field, direction string) OrderBy {
	ob := DefaultOrderBy

	switch field {
	case OrderByName, OrderByPrice, OrderByCreatedAt:
		ob.Field = field
	}

	switch strings.ToUpper(direction) {
	case ASC:
		ob.Direction = ASC
	case DESC:
		ob.Direction = DESC
	}

	return ob
}

// Filter narrows product listings.
type Filter struct {
	SubCategorySlug string
}
