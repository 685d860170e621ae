// Package user manages storefront accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/random"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound              = errors.New("user not found")
	ErrUniqueEmail           = errors.New("email is not unique")
	ErrAuthenticationFailure = errors.New("authentication failed")
)

type Storer interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	QueryByID(ctx context.Context, id string) (User, error)
	QueryByEmail(ctx context.Context, email string) (User, error)
}

type Core struct {
	log   logrus.FieldLogger
	store Storer
	now   func() time.Time
}

func NewCore(log logrus.FieldLogger, store Storer) *Core {
	return &Core{
		log:   log,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a customer account.
func (c *Core) Signup(ctx context.Context, us UserSignup) (User, error) {
	return c.Create(ctx, UserNew{
		Name:     us.Name,
		Email:    us.Email,
		Role:     claims.RoleUser,
		Password: us.Password,
	})
}

func (c *Core) Create(ctx context.Context, nu UserNew) (User, error) {
	email, err := normalizeEmail(nu.Email)
	if err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("generating password hash: %w", err)
	}

	now := c.now()
	u := User{
		ID:           validate.GenerateID(),
		Name:         nu.Name,
		Email:        email,
		Role:         nu.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.store.Create(ctx, u); err != nil {
		return User{}, fmt.Errorf("create: %w", err)
	}
	return u, nil
}

// Authenticate returns the user owning email when password matches. Every
// mismatch reports ErrAuthenticationFailure.
func (c *Core) Authenticate(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, ErrAuthenticationFailure
	}

	u, err := c.store.QueryByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrAuthenticationFailure
		}
		return User{}, fmt.Errorf("query: email[%s]: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrAuthenticationFailure
	}
	return u, nil
}

func (c *Core) QueryByID(ctx context.Context, id string) (User, error) {
	u, err := c.store.QueryByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("query: user[%s]: %w", id, err)
	}
	return u, nil
}

func (c *Core) QueryByEmail(ctx context.Context, email string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, ErrNotFound
	}

	u, err := c.store.QueryByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("query: email[%s]: %w", email, err)
	}
	return u, nil
}

func (c *Core) Update(ctx context.Context, id string, up UserUp) (User, error) {
	u, err := c.store.QueryByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("query: user[%s]: %w", id, err)
	}

	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.PhotoURL != nil {
		u.PhotoURL = *up.PhotoURL
	}
	if up.BirthDate != nil {
		bd := up.BirthDate.UTC()
		u.BirthDate = &bd
	}
	u.UpdatedAt = c.now()

	if err := c.store.Update(ctx, u); err != nil {
		return User{}, fmt.Errorf("update: user[%s]: %w", id, err)
	}
	return u, nil
}

// ChangePassword replaces the password of id after checking the current one.
func (c *Core) ChangePassword(ctx context.Context, id string, pc PasswordChange) error {
	u, err := c.store.QueryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("query: user[%s]: %w", id, err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pc.Current)); err != nil {
		return ErrAuthenticationFailure
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pc.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("generating password hash: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = c.now()

	if err := c.store.Update(ctx, u); err != nil {
		return fmt.Errorf("update: user[%s]: %w", id, err)
	}
	return nil
}

// FindOrCreateByEmail returns the account of an OAuth identity, creating
// it with an unusable random password on first login.
func (c *Core) FindOrCreateByEmail(ctx context.Context, name, email string) (User, error) {
	u, err := c.QueryByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	pass, err := random.StringSecure(32)
	if err != nil {
		return User{}, fmt.Errorf("generating password: %w", err)
	}

	u, err = c.Create(ctx, UserNew{
		Name:     name,
		Email:    email,
		Role:     claims.RoleUser,
		Password: pass,
	})
	if errors.Is(err, ErrUniqueEmail) {
		return c.QueryByEmail(ctx, email)
	}
	return u, err
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("parsing email: %w", err)
	}
	return strings.ToLower(addr.Address), nil
}
