package owner

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/core/claims"
)

func TestOwnerUnion(t *testing.T) {
	u := User("42")
	if id, ok := u.UserID(); !ok || id != "42" {
		t.Fatalf("expected user 42, got %q %v", id, ok)
	}
	if _, ok := u.Token(); ok {
		t.Fatal("user owner must not carry a session token")
	}

	s := Session("abcdefghij")
	if tok, ok := s.Token(); !ok || tok != "abcdefghij" {
		t.Fatalf("expected token, got %q %v", tok, ok)
	}
	if _, ok := s.UserID(); ok {
		t.Fatal("session owner must not carry a user id")
	}
	if got := s.String(); got != "session:abcdef…" {
		t.Fatalf("unexpected string %q", got)
	}

	if !(Owner{}).IsZero() || !User("").IsZero() {
		t.Fatal("empty owners must be zero")
	}
}

func TestFromRequestKeepsVisitorToken(t *testing.T) {
	sm := scs.New()

	var tokens []string
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, err := FromRequest(r.Context(), sm)
		if err != nil {
			t.Errorf("resolving owner: %v", err)
			return
		}
		tok, ok := o.Token()
		if !ok {
			t.Errorf("expected a session owner, got %s", o)
		}
		tokens = append(tokens, tok)
	}))

	srv := httptest.NewServer(h)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Jar: jar}

	for i := 0; i < 3; i++ {
		res, err := client.Get(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
	}

	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0] == "" || tokens[0] != tokens[1] || tokens[1] != tokens[2] {
		t.Fatalf("visitor token should be stable, got %v", tokens)
	}
}

func TestFromRequestPrefersUser(t *testing.T) {
	sm := scs.New()

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	ctx = claims.Set(ctx, claims.Claims{UserID: "u-1", Role: claims.RoleUser})

	o, err := FromRequest(ctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := o.UserID(); !ok || id != "u-1" {
		t.Fatalf("expected user owner, got %s", o)
	}
	if VisitorToken(ctx, sm) != "" {
		t.Fatal("resolving a user must not mint a visitor token")
	}
}

func TestForgetVisitor(t *testing.T) {
	sm := scs.New()

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	first, err := FromRequest(ctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	ForgetVisitor(ctx, sm)

	second, err := FromRequest(ctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("a forgotten visitor should receive a new token")
	}
}
