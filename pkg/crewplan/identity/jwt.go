package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RevocationChecker reports whether verified claims belong to a revoked
// session. Optional; when nil, tokens are never treated as revoked.
type RevocationChecker func(ctx context.Context, claims *Claims) (bool, error)

// idTokenClaims mirrors the identity provider's ID-token payload.
type idTokenClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies RS256-signed ID tokens against a locally held public
// key, checking issuer and audience.
type JWTVerifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
	revoked  RevocationChecker
}

// NewJWTVerifier builds a verifier from a PEM-encoded RSA private key, as
// issued in service-account credentials. Only the public half is retained.
func NewJWTVerifier(privateKeyPEM, issuer, audience string) (*JWTVerifier, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("no PEM block in private key")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		key = k
	default:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		k, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		key = k
	}

	return NewJWTVerifierFromKey(&key.PublicKey, issuer, audience), nil
}

// NewJWTVerifierFromKey builds a verifier from an RSA public key directly.
func NewJWTVerifierFromKey(key *rsa.PublicKey, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		key:      key,
		issuer:   issuer,
		audience: audience,
	}
}

// WithRevocationChecker attaches a revocation check invoked after signature
// verification. Returns the verifier for chaining.
func (v *JWTVerifier) WithRevocationChecker(check RevocationChecker) *JWTVerifier {
	v.revoked = check
	return v
}

// Verify validates the token and extracts claims.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var raw idTokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &raw, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if raw.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject:       raw.Subject,
		Email:         raw.Email,
		Name:          raw.Name,
		EmailVerified: raw.EmailVerified,
	}

	if v.revoked != nil {
		revoked, err := v.revoked(ctx, claims)
		if err != nil {
			return nil, fmt.Errorf("revocation check: %w", err)
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}
