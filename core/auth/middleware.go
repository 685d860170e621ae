package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
)

// LoadAndSave loads the session of the request and saves it once the
// handler is done.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})

			sm.LoadAndSave(h).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
	}
}

// Identify puts the claims of a signed in user in the context. Anonymous
// requests pass through untouched.
func Identify(s *Session) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if clm, ok := s.claims(ctx); ok {
				ctx = claims.Set(ctx, clm)
			}
			return handler(ctx, w, r)
		}
	}
}

func Authenticate(s *Session) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, ok := s.claims(ctx)
			if !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}
			return handler(claims.Set(ctx, clm), w, r)
		}
	}
}

func Admin(s *Session) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, ok := s.claims(ctx)
			if !ok {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}
			ctx = claims.Set(ctx, clm)
			if !claims.IsAdmin(ctx) {
				return weberr.Forbidden(errors.New("user is not an admin"))
			}
			return handler(ctx, w, r)
		}
	}
}
