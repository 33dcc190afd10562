package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier verifies ID tokens against the provider's published keys.
// Used when the deployment cannot hold the signing key locally.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuer and builds a verifier for
// the given audience. Requires network access at construction time.
func NewOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: audience}),
	}, nil
}

// NewOIDCVerifierWithKeySet builds a verifier over a caller-supplied key set,
// skipping discovery.
func NewOIDCVerifierWithKeySet(issuer, audience string, keySet oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: audience}),
	}
}

// Verify validates the token and extracts claims.
func (v *OIDCVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrMalformedToken
	}

	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	var raw struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&raw); err != nil {
		return nil, ErrInvalidToken
	}
	if idToken.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:       idToken.Subject,
		Email:         raw.Email,
		Name:          raw.Name,
		EmailVerified: raw.EmailVerified,
	}, nil
}
