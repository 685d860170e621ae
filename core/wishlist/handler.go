package wishlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/validate"
)

func HandleShow(wc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		h, err := resolve(ctx, wc, sm)
		if err != nil {
			return err
		}

		return respondSummary(ctx, w, h)
	}
}

// HandleListIDs lists the wishlisted product ids without creating a
// wishlist or a visitor token.
func HandleListIDs(wc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ids := []string{}

		o, ok := currentOwner(ctx, sm)
		if !ok {
			return web.Respond(ctx, w, ids, http.StatusOK)
		}

		h, err := wc.Lookup(ctx, o)
		switch {
		case errors.Is(err, ErrNotFound):
			return web.Respond(ctx, w, ids, http.StatusOK)
		case err != nil:
			return fmt.Errorf("looking up wishlist: %w", err)
		}

		if ids, err = h.ProductIDs(ctx); err != nil {
			return err
		}
		return web.Respond(ctx, w, ids, http.StatusOK)
	}
}

func HandleClear(wc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		h, err := resolve(ctx, wc, sm)
		if err != nil {
			return err
		}

		if err := h.Clear(ctx); err != nil {
			return toWebErr(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleToggleItem(wc *Core, pc *product.Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID, err := existingProduct(ctx, r, pc)
		if err != nil {
			return err
		}

		h, err := resolve(ctx, wc, sm)
		if err != nil {
			return err
		}

		added, err := h.Toggle(ctx, productID)
		if err != nil {
			return toWebErr(err)
		}

		return web.Respond(ctx, w, Toggled{ProductID: productID, Added: added}, http.StatusOK)
	}
}

func HandleAddItem(wc *Core, pc *product.Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID, err := existingProduct(ctx, r, pc)
		if err != nil {
			return err
		}

		h, err := resolve(ctx, wc, sm)
		if err != nil {
			return err
		}

		if err := h.Add(ctx, productID); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func HandleDeleteItem(wc *Core, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		h, err := resolve(ctx, wc, sm)
		if err != nil {
			return err
		}

		if err := h.Remove(ctx, productID); err != nil {
			return toWebErr(err)
		}

		return respondSummary(ctx, w, h)
	}
}

func existingProduct(ctx context.Context, r *http.Request, pc *product.Core) (string, error) {
	productID := web.Param(r, "product_id")
	if err := validate.CheckID(productID); err != nil {
		return "", weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
	}

	if _, err := pc.QueryByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return "", weberr.NotFound(err)
		}
		return "", fmt.Errorf("fetching product[%s]: %w", productID, err)
	}
	return productID, nil
}

// currentOwner identifies the request without minting a visitor token.
func currentOwner(ctx context.Context, sm *scs.SessionManager) (owner.Owner, bool) {
	if clm, err := claims.Get(ctx); err == nil {
		return owner.User(clm.UserID), true
	}
	if tok := owner.VisitorToken(ctx, sm); tok != "" {
		return owner.Session(tok), true
	}
	return owner.Owner{}, false
}

func resolve(ctx context.Context, wc *Core, sm *scs.SessionManager) (*Handle, error) {
	o, err := owner.FromRequest(ctx, sm)
	if err != nil {
		return nil, fmt.Errorf("identifying wishlist owner: %w", err)
	}

	h, err := wc.Resolve(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("resolving wishlist: %w", err)
	}
	return h, nil
}

func respondSummary(ctx context.Context, w http.ResponseWriter, h *Handle) error {
	sum, err := h.Summary(ctx)
	if err != nil {
		return fmt.Errorf("summarizing wishlist[%s]: %w", h.ID(), err)
	}
	return web.Respond(ctx, w, sum, http.StatusOK)
}

func toWebErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return weberr.NotFound(err)
	}
	return err
}
