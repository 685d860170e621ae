package category

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/validate"
)

func HandleList(cc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cats, err := cc.Query(ctx)
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}
		if cats == nil {
			cats = []Category{}
		}

		return web.Respond(ctx, w, cats, http.StatusOK)
	}
}

func HandleShow(cc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		d, err := cc.QueryDetail(ctx, slug)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching category[%s]: %w", slug, err)
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleCreate(cc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nc CategoryNew
		if err := web.Decode(w, r, &nc); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(nc); err != nil {
			return weberr.Invalid(err)
		}

		c, err := cc.Create(ctx, nc)
		if err != nil {
			if errors.Is(err, ErrUniqueSlug) {
				return weberr.Conflict(err)
			}
			return fmt.Errorf("creating category: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleCreateSub(cc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		slug := web.Param(r, "slug")

		var ns SubCategoryNew
		if err := web.Decode(w, r, &ns); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ns); err != nil {
			return weberr.Invalid(err)
		}

		sc, err := cc.CreateSub(ctx, slug, ns)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return weberr.NotFound(err)
			case errors.Is(err, ErrUniqueSlug):
				return weberr.Conflict(err)
			}
			return fmt.Errorf("creating subcategory in category[%s]: %w", slug, err)
		}

		return web.Respond(ctx, w, sc, http.StatusCreated)
	}
}
