package wishlistdb

import (
	"database/sql"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/wishlist"
)

type dbWishlist struct {
	ID         string         `db:"wishlist_id"`
	UserID     sql.NullString `db:"user_id"`
	SessionKey sql.NullString `db:"session_key"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func toDBWishlist(w wishlist.Wishlist) dbWishlist {
	dbw := dbWishlist{
		ID:        w.ID,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if id, ok := w.Owner.UserID(); ok {
		dbw.UserID = sql.NullString{String: id, Valid: true}
	}
	if tok, ok := w.Owner.Token(); ok {
		dbw.SessionKey = sql.NullString{String: tok, Valid: true}
	}
	return dbw
}

func toCoreWishlist(dbw dbWishlist) wishlist.Wishlist {
	w := wishlist.Wishlist{
		ID:        dbw.ID,
		CreatedAt: dbw.CreatedAt,
		UpdatedAt: dbw.UpdatedAt,
	}
	switch {
	case dbw.UserID.Valid:
		w.Owner = owner.User(dbw.UserID.String)
	case dbw.SessionKey.Valid:
		w.Owner = owner.Session(dbw.SessionKey.String)
	}
	return w
}

type dbItem struct {
	WishlistID string    `db:"wishlist_id"`
	ProductID  string    `db:"product_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func toCoreItems(dbis []dbItem) []wishlist.Item {
	items := make([]wishlist.Item, len(dbis))
	for i, dbi := range dbis {
		items[i] = wishlist.Item(dbi)
	}
	return items
}
