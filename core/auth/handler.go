package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/random"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/irsalhamdi/storefront/validate"
)

const (
	stateKey = "oauth_state"
	nonceKey = "oauth_nonce"
)

func HandleSignup(uc *user.Core, s *Session) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var us user.UserSignup
		if err := web.Decode(w, r, &us); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(us); err != nil {
			return weberr.Invalid(err)
		}

		u, err := uc.Signup(ctx, us)
		if err != nil {
			if errors.Is(err, user.ErrUniqueEmail) {
				return weberr.NewError(err, user.ErrUniqueEmail.Error(), http.StatusConflict)
			}
			return fmt.Errorf("signing up: %w", err)
		}

		if _, err := s.Login(ctx, u.ID, u.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusCreated)
	}
}

func HandleLogin(uc *user.Core, s *Session, lim *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cred user.Credentials
		if err := web.Decode(w, r, &cred); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cred); err != nil {
			return weberr.Invalid(err)
		}

		if !lim.Check(cred.Email) {
			return weberr.TooManyRequests(fmt.Errorf("login attempts exceeded for %s", cred.Email))
		}

		u, err := uc.Authenticate(ctx, cred.Email, cred.Password)
		if err != nil {
			if errors.Is(err, user.ErrAuthenticationFailure) {
				return weberr.NotAuthorized(err)
			}
			return fmt.Errorf("authenticating: %w", err)
		}

		if _, err := s.Login(ctx, u.ID, u.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleLogout(s *Session) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := s.Logout(ctx); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleOauthLogin redirects to the provider's consent page.
func HandleOauthLogin(s *Session, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("oauth provider %q not configured", name))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		nonce, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth nonce: %w", err)
		}
		s.sm.Put(ctx, stateKey, state)
		s.sm.Put(ctx, nonceKey, nonce)

		http.Redirect(w, r, prov.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
		return nil
	}
}

// HandleOauthCallback completes a provider login, creating the account on
// first use, and redirects to redirectURL.
func HandleOauthCallback(uc *user.Core, s *Session, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("oauth provider %q not configured", name))
		}

		state := s.sm.PopString(ctx, stateKey)
		nonce := s.sm.PopString(ctx, nonceKey)
		if state == "" || r.URL.Query().Get("state") != state {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		id, err := prov.exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.NotAuthorized(err)
		}
		if id.Nonce != nonce {
			return weberr.NotAuthorized(errors.New("oauth nonce mismatch"))
		}
		if !id.EmailVerified {
			return weberr.Forbidden(fmt.Errorf("email %s not verified by %s", id.Email, name))
		}

		u, err := uc.FindOrCreateByEmail(ctx, id.Name, id.Email)
		if err != nil {
			return fmt.Errorf("finding user for %s: %w", id.Email, err)
		}

		if _, err := s.Login(ctx, u.ID, u.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", u.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
		return nil
	}
}
