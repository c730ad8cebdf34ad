package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleOAuth implements OAuthProvider for Google accounts
type GoogleOAuth struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleOAuth builds the provider. Signing keys are fetched lazily on the
// first verification.
func NewGoogleOAuth(ctx context.Context, clientID, clientSecret, redirectURL string) *GoogleOAuth {
	keySet := oidc.NewRemoteKeySet(ctx, googleJWKSURL)
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: oidc.NewVerifier(googleIssuer, keySet, &oidc.Config{ClientID: clientID}),
	}
}

// AuthCodeURL returns the Google consent URL
func (g *GoogleOAuth) AuthCodeURL(state, nonce string) string {
	return g.config.AuthCodeURL(state, oidc.Nonce(nonce), oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the code for tokens and verifies the ID token
func (g *GoogleOAuth) Exchange(ctx context.Context, code, nonce string) (*OAuthIdentity, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response has no id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, errors.New("id token nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read id token claims: %w", err)
	}

	return &OAuthIdentity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
