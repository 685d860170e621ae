package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

// Provider is an OpenID Connect identity provider users can log in with.
type Provider struct {
	Name     string
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers every configured provider. Providers without a
// client id are skipped.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))

	for _, cfg := range cfgs {
		if cfg.Client == "" {
			continue
		}

		p, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider %s: %w", cfg.Name, err)
		}

		provs[cfg.Name] = Provider{
			Name: cfg.Name,
			oauth: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}

	return provs, nil
}

type identity struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nonce         string `json:"nonce"`
}

// exchange trades an authorization code for the verified identity it
// belongs to.
func (p Provider) exchange(ctx context.Context, code string) (identity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return identity{}, fmt.Errorf("exchanging code: %w", err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok {
		return identity{}, fmt.Errorf("token response has no id_token")
	}

	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return identity{}, fmt.Errorf("verifying id token: %w", err)
	}

	var id identity
	if err := idTok.Claims(&id); err != nil {
		return identity{}, fmt.Errorf("reading id token claims: %w", err)
	}
	return id, nil
}
