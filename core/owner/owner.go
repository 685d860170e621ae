// Package owner identifies who a cart or a wishlist belongs to: a signed in
// user or an anonymous visitor session, never both.
package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/random"
)

// visitorKey is the session key holding the anonymous visitor token.
const visitorKey = "visitor_token"

const tokenLength = 32

var ErrInvalid = errors.New("owner is neither a user nor a session")

type Kind int

const (
	KindNone Kind = iota
	KindUser
	KindSession
)

type Owner struct {
	kind Kind
	id   string
}

func User(id string) Owner {
	return Owner{kind: KindUser, id: id}
}

func Session(token string) Owner {
	return Owner{kind: KindSession, id: token}
}

func (o Owner) Kind() Kind { return o.kind }

func (o Owner) IsZero() bool { return o.kind == KindNone || o.id == "" }

func (o Owner) UserID() (string, bool) {
	if o.kind != KindUser {
		return "", false
	}
	return o.id, true
}

func (o Owner) Token() (string, bool) {
	if o.kind != KindSession {
		return "", false
	}
	return o.id, true
}

// String is safe to log: session tokens are truncated.
func (o Owner) String() string {
	switch o.kind {
	case KindUser:
		return "user:" + o.id
	case KindSession:
		if len(o.id) > 6 {
			return "session:" + o.id[:6] + "…"
		}
		return "session:" + o.id
	}
	return "none"
}

// FromRequest returns the owner of the current request. A visitor without a
// token gets one stored in its session.
func FromRequest(ctx context.Context, sm *scs.SessionManager) (Owner, error) {
	if clm, err := claims.Get(ctx); err == nil {
		return User(clm.UserID), nil
	}

	if tok := VisitorToken(ctx, sm); tok != "" {
		return Session(tok), nil
	}

	tok, err := random.StringSecure(tokenLength)
	if err != nil {
		return Owner{}, fmt.Errorf("generating visitor token: %w", err)
	}
	sm.Put(ctx, visitorKey, tok)

	return Session(tok), nil
}

// VisitorToken returns the anonymous token of the session, if any.
func VisitorToken(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, visitorKey)
}

// ForgetVisitor drops the anonymous token so that the next anonymous
// request starts from a fresh one.
func ForgetVisitor(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, visitorKey)
}
