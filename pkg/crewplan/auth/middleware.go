package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crewplan/crewplan/pkg/crewplan/identity"
)

const (
	// ContextKeyUID is the key for the identity subject id in gin context
	ContextKeyUID = "uid"
	// ContextKeyEmail is the key for email in gin context
	ContextKeyEmail = "email"
	// ContextKeyName is the key for display name in gin context
	ContextKeyName = "name"
	// ContextKeyEmailVerified is the key for the email-verified flag in gin context
	ContextKeyEmailVerified = "email_verified"
)

// Machine-readable codes returned alongside 401 responses. Clients branch on
// these to decide how to prompt re-authentication.
const (
	CodeNoToken      = "auth/no-token"
	CodeTokenExpired = "auth/token-expired"
	CodeTokenRevoked = "auth/token-revoked"
	CodeInvalidToken = "auth/invalid-token"
)

// AuthMiddleware verifies the bearer token and sets the caller's identity in
// context. It only establishes identity; resource authorization happens in
// the handlers.
func AuthMiddleware(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "No authorization header provided",
				"code":  CodeNoToken,
			})
			c.Abort()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "No token provided",
				"code":  CodeNoToken,
			})
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			status, code, msg := mapVerifyError(err)
			c.JSON(status, gin.H{"error": msg, "code": code})
			c.Abort()
			return
		}

		c.Set(ContextKeyUID, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyEmailVerified, claims.EmailVerified)

		c.Next()
	}
}

// mapVerifyError translates a verification failure into status, code and message.
func mapVerifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, identity.ErrExpiredToken):
		return http.StatusUnauthorized, CodeTokenExpired, "Token expired"
	case errors.Is(err, identity.ErrRevokedToken):
		return http.StatusUnauthorized, CodeTokenRevoked, "Token revoked"
	case errors.Is(err, identity.ErrNoToken), errors.Is(err, identity.ErrMalformedToken):
		return http.StatusUnauthorized, CodeInvalidToken, "Invalid token"
	default:
		return http.StatusUnauthorized, CodeInvalidToken, "Authentication failed"
	}
}

// CurrentIdentity returns the verified identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (identity.Claims, bool) {
	uid, exists := c.Get(ContextKeyUID)
	if !exists {
		return identity.Claims{}, false
	}

	claims := identity.Claims{Subject: uid.(string)}
	if email, ok := c.Get(ContextKeyEmail); ok {
		claims.Email = email.(string)
	}
	if name, ok := c.Get(ContextKeyName); ok {
		claims.Name = name.(string)
	}
	if verified, ok := c.Get(ContextKeyEmailVerified); ok {
		claims.EmailVerified = verified.(bool)
	}
	return claims, true
}
