// Package config provides environment-based configuration for crewplan.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// VerifierMode selects the identity-token verification backend.
type VerifierMode string

const (
	// VerifierModeJWT verifies tokens locally against the service-account key.
	VerifierModeJWT VerifierMode = "jwt"
	// VerifierModeOIDC verifies tokens against the provider's discovery document.
	VerifierModeOIDC VerifierMode = "oidc"
)

// Config holds all process configuration, loaded once at startup.
type Config struct {
	Environment Environment
	Port        string
	DBPath      string

	// Identity provider settings
	VerifierMode   VerifierMode
	IDPProjectID   string
	IDPClientEmail string
	IDPPrivateKey  string // PEM, possibly with literal \n escapes from the env
	IDPIssuer      string
	IDPAudience    string
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() Config {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	mode := VerifierMode(os.Getenv("IDP_MODE"))
	switch mode {
	case VerifierModeJWT, VerifierModeOIDC:
		// valid
	default:
		mode = VerifierModeJWT
	}

	projectID := os.Getenv("IDP_PROJECT_ID")

	issuer := os.Getenv("IDP_ISSUER")
	if issuer == "" && projectID != "" {
		issuer = fmt.Sprintf("https://securetoken.google.com/%s", projectID)
	}

	audience := os.Getenv("IDP_AUDIENCE")
	if audience == "" {
		audience = projectID
	}

	return Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("CREWPLAN_DB_PATH", "crewplan.db"),
		VerifierMode:   mode,
		IDPProjectID:   projectID,
		IDPClientEmail: os.Getenv("IDP_CLIENT_EMAIL"),
		IDPPrivateKey:  normalizePrivateKey(os.Getenv("IDP_PRIVATE_KEY")),
		IDPIssuer:      issuer,
		IDPAudience:    audience,
	}
}

// IsProduction reports whether the process runs in production mode. Internal
// error details are only echoed to clients outside production.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// normalizePrivateKey converts literal "\n" escapes to newlines. Deployment
// environments commonly store the PEM key as a single-line env var.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// getEnv reads a string from an environment variable, returning the default if unset.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
