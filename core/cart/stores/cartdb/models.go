package cartdb

import (
	"database/sql"
	"time"

	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/shopspring/decimal"
)

type dbCart struct {
	ID         string         `db:"cart_id"`
	UserID     sql.NullString `db:"user_id"`
	SessionKey sql.NullString `db:"session_key"`
	IsActive   bool           `db:"is_active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	RetiredAt  sql.NullTime   `db:"retired_at"`
}

func toDBCart(c cart.Cart) dbCart {
	dbc := dbCart{
		ID:        c.ID,
		IsActive:  c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if id, ok := c.Owner.UserID(); ok {
		dbc.UserID = sql.NullString{String: id, Valid: true}
	}
	if tok, ok := c.Owner.Token(); ok {
		dbc.SessionKey = sql.NullString{String: tok, Valid: true}
	}
	if c.RetiredAt != nil {
		dbc.RetiredAt = sql.NullTime{Time: *c.RetiredAt, Valid: true}
	}
	return dbc
}

func toCoreCart(dbc dbCart) cart.Cart {
	c := cart.Cart{
		ID:        dbc.ID,
		Active:    dbc.IsActive,
		CreatedAt: dbc.CreatedAt,
		UpdatedAt: dbc.UpdatedAt,
	}
	switch {
	case dbc.UserID.Valid:
		c.Owner = owner.User(dbc.UserID.String)
	case dbc.SessionKey.Valid:
		c.Owner = owner.Session(dbc.SessionKey.String)
	}
	if dbc.RetiredAt.Valid {
		t := dbc.RetiredAt.Time
		c.RetiredAt = &t
	}
	return c
}

type dbItem struct {
	CartID    string          `db:"cart_id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func toDBItem(it cart.Item) dbItem {
	return dbItem(it)
}

func toCoreItems(dbis []dbItem) []cart.Item {
	items := make([]cart.Item, len(dbis))
	for i, dbi := range dbis {
		items[i] = cart.Item(dbi)
	}
	return items
}
