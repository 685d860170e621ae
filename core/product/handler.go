package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/validate"
)

const (
	defaultRows = 12
	maxRows     = 100
)

type page struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Rows  int       `json:"rows"`
	Sort  string    `json:"sort"`
	Dir   string    `json:"direction"`
}

func HandleList(pc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		pg, err := web.QueryInt(r, "page", 1)
		if err != nil || pg < 1 {
			return weberr.NewError(errors.New("invalid page"), "page must be a positive integer", http.StatusBadRequest)
		}

		rows, err := web.QueryInt(r, "rows", defaultRows)
		if err != nil || rows < 1 || rows > maxRows {
			return weberr.NewError(errors.New("invalid rows"), fmt.Sprintf("rows must be between 1 and %d", maxRows), http.StatusBadRequest)
		}

		q := r.URL.Query()
		filter := Filter{SubCategorySlug: q.Get("subcategory")}
		orderBy := ParseOrder(q.Get("sort"), q.Get("direction"))

		ps, err := pc.Query(ctx, filter, orderBy, pg, rows)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		total, err := pc.Count(ctx, filter)
		if err != nil {
			return fmt.Errorf("counting products: %w", err)
		}

		if ps == nil {
			ps = []Product{}
		}

		return web.Respond(ctx, w, page{
			Items: ps,
			Total: total,
			Page:  pg,
			Rows:  rows,
			Sort:  orderBy.Field,
			Dir:   orderBy.Direction,
		}, http.StatusOK)
	}
}

func HandleShow(pc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		d, err := pc.QueryDetail(ctx, slug)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", slug, err)
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleListPrices(pc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		pps, err := pc.QueryPriceHistory(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching price history of product[%s]: %w", id, err)
		}

		if pps == nil {
			pps = []PricePoint{}
		}
		return web.Respond(ctx, w, pps, http.StatusOK)
	}
}

func HandleCreate(pc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var np ProductNew
		if err := web.Decode(w, r, &np); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(np); err != nil {
			return weberr.Invalid(err)
		}

		p, err := pc.Create(ctx, np)
		if err != nil {
			if errors.Is(err, ErrUniqueSlug) {
				return weberr.Conflict(err)
			}
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(pc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		var up ProductUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Invalid(err)
		}

		p, err := pc.Update(ctx, id, up)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("updating product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}
