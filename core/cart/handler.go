package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/validate"
)

func HandleShow(cc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleClear(cc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		if err := h.Clear(ctx); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleAddItem(cc *Core, pc *product.Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		in := ItemNew{Quantity: 1}
		if err := web.Decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Invalid(err)
		}

		p, err := pc.QueryByID(ctx, productID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		if _, err := h.Add(ctx, p, in.Quantity); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleUpdateItem(cc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		var up ItemUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Invalid(err)
		}

		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		if err := h.UpdateQuantity(ctx, productID, up.Quantity); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleDecrementItem(cc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		in := ItemDecrement{Quantity: 1}
		if err := web.Decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Invalid(err)
		}

		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		if err := h.Decrement(ctx, productID, in.Quantity); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleDeleteItem(cc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		h, err := resolve(ctx, cc, sm)
		if err != nil {
			return err
		}

		if err := h.Remove(ctx, productID); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func resolve(ctx context.Context, cc *Core, sm *scs.SessionManager) (*Handle, error) {
	o, err := owner.FromRequest(ctx, sm)
	if err != nil {
		return nil, fmt.Errorf("identifying cart owner: %w", err)
	}

	h, err := cc.Resolve(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("resolving cart: %w", err)
	}
	return h, nil
}

func respondSummary(ctx context.Context, w http.ResponseWriter, h *Handle) error {
	sum, err := h.Summary(ctx)
	if err != nil {
		return fmt.Errorf("summarizing cart[%s]: %w", h.ID(), err)
	}
	return web.Respond(ctx, w, sum, http.StatusOK)
}

func toWebErr(err error) error {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return weberr.NewError(err, ErrInvalidQuantity.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		return weberr.NotFound(err)
	}
	return err
}
