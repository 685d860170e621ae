// Package auth keeps the signed in user of a session and runs the login
// hooks that hand the visitor's cart and wishlist over to the user.
package auth

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/sirupsen/logrus"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// LoginHook runs after a user signs in. priorToken is the visitor token the
// session carried before login, empty when there was none.
type LoginHook func(ctx context.Context, userID string, priorToken string) error

type Session struct {
	log   logrus.FieldLogger
	sm    *scs.SessionManager
	hooks []LoginHook
}

func NewSession(log logrus.FieldLogger, sm *scs.SessionManager, hooks ...LoginHook) *Session {
	return &Session{
		log:   log,
		sm:    sm,
		hooks: hooks,
	}
}

func (s *Session) Manager() *scs.SessionManager { return s.sm }

// Login binds the session to the user and runs the login hooks. The session
// token is renewed first. A failing hook is logged and does not fail the
// login.
func (s *Session) Login(ctx context.Context, userID string, role string) (context.Context, error) {
	prior := owner.VisitorToken(ctx, s.sm)

	if err := s.sm.RenewToken(ctx); err != nil {
		return ctx, fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, userIDKey, userID)
	s.sm.Put(ctx, roleKey, role)
	owner.ForgetVisitor(ctx, s.sm)

	ctx = claims.Set(ctx, claims.Claims{UserID: userID, Role: role})

	log := s.log.WithField("user_id", userID)
	for _, hook := range s.hooks {
		if err := hook(ctx, userID, prior); err != nil {
			log.WithError(err).Warn("login hook failed")
		}
	}

	log.Info("user logged in")
	return ctx, nil
}

// Logout drops every value of the session, the visitor token included.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

func (s *Session) claims(ctx context.Context) (claims.Claims, bool) {
	id := s.sm.GetString(ctx, userIDKey)
	role := s.sm.GetString(ctx, roleKey)
	if id == "" || !claims.ValidRole(role) {
		return claims.Claims{}, false
	}
	return claims.Claims{UserID: id, Role: role}, true
}
