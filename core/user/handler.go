package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/validate"
)

func HandleShowCurrent(uc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		u, err := uc.QueryByID(ctx, clm.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleUpdateCurrent(uc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up UserUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Invalid(err)
		}

		u, err := uc.Update(ctx, clm.UserID, up)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("updating user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleChangePassword(uc *Core) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var pc PasswordChange
		if err := web.Decode(w, r, &pc); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pc); err != nil {
			return weberr.Invalid(err)
		}

		if err := uc.ChangePassword(ctx, clm.UserID, pc); err != nil {
			if errors.Is(err, ErrAuthenticationFailure) {
				return weberr.NewError(err, "current password is incorrect", http.StatusUnprocessableEntity)
			}
			return fmt.Errorf("changing password of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
