// Package identity wraps external identity-token verification. The rest of
// the application only sees verified Claims or one of the typed failures
// below; it never inspects raw tokens.
package identity

import (
	"context"
	"errors"
)

// Verification failure modes. Each is distinguishable with errors.Is so the
// auth middleware can map them to distinct response codes.
var (
	ErrNoToken        = errors.New("no token provided")
	ErrMalformedToken = errors.New("token is malformed")
	ErrExpiredToken   = errors.New("token has expired")
	ErrRevokedToken   = errors.New("token has been revoked")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims holds the verified identity extracted from a token. Email is
// optional: identities registered through phone sign-in carry no email and
// are still valid.
type Claims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier verifies a bearer token and returns its claims. Verification is
// synchronous and authoritative per call; callers do not retry.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
