// Package claims carries the authenticated user of a request in its context.
package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var ErrMissing = errors.New("claim value missing from context")

type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok || v.UserID == "" {
		return Claims{}, ErrMissing
	}
	return v, nil
}

// IsAdmin reports whether the request belongs to a signed in admin.
func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	return err == nil && c.Role == RoleAdmin
}

// ValidRole reports whether role is one the store grants.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
