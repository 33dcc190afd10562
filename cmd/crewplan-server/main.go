package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/config"
	"github.com/crewplan/crewplan/pkg/crewplan/database"
	"github.com/crewplan/crewplan/pkg/crewplan/departments"
	"github.com/crewplan/crewplan/pkg/crewplan/employees"
	"github.com/crewplan/crewplan/pkg/crewplan/identity"
	"github.com/crewplan/crewplan/pkg/crewplan/metrics"
	"github.com/crewplan/crewplan/pkg/crewplan/middleware"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/profile"
	"github.com/crewplan/crewplan/pkg/crewplan/projects"
	"github.com/crewplan/crewplan/pkg/crewplan/roles"
	"github.com/crewplan/crewplan/pkg/crewplan/skills"
	"github.com/crewplan/crewplan/pkg/crewplan/users"

	_ "github.com/crewplan/crewplan/api/swagger"
)

// @title CrewPlan API
// @version 1.0
// @description Workforce and resource planning backend with identity-provider authentication.

// @contact.name CrewPlan Support
// @contact.url https://github.com/crewplan/crewplan

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider ID token. Format: "Bearer {token}"

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to connect to database")
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Msg("database migrations completed")

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("mode", string(cfg.VerifierMode)).Msg("failed to configure token verifier")
	}
	logger.Info().
		Str("mode", string(cfg.VerifierMode)).
		Str("issuer", cfg.IDPIssuer).
		Str("service_account", cfg.IDPClientEmail).
		Msg("token verifier configured")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(logger), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "crewplan",
			})
		})

		authRequired := auth.AuthMiddleware(verifier)

		// Identity sync (protected - runs after every sign-in)
		usersHandler := users.NewHandler(db, logger)
		usersHandler.RegisterRoutes(api.Group("/auth", authRequired))

		// Organization routes (protected)
		orgHandler := organizations.NewHandler(db, logger)
		orgHandler.RegisterRoutes(api.Group("/organization", authRequired))

		// Department routes (protected, organization scoped)
		deptHandler := departments.NewHandler(db, logger)
		deptHandler.RegisterRoutes(api.Group("/departments", authRequired))

		// Employee routes (protected, organization scoped)
		empHandler := employees.NewHandler(db, logger)
		empHandler.RegisterRoutes(api.Group("/employees", authRequired))

		// Skill routes (protected, organization scoped)
		skillsHandler := skills.NewHandler(db, logger)
		skillsHandler.RegisterRoutes(api.Group("/skills", authRequired))

		// Project routes (protected, organization scoped)
		projectsHandler := projects.NewHandler(db, logger)
		projectsHandler.RegisterRoutes(api.Group("/projects", authRequired))

		// Role assignment routes (protected, organization scoped)
		rolesHandler := roles.NewHandler(db, logger)
		rolesHandler.RegisterRoutes(api.Group("/roles", authRequired))

		// Dashboard metrics (protected, organization scoped)
		metricsHandler := metrics.NewHandler(db, logger)
		metricsHandler.RegisterRoutes(api.Group("/metrics", authRequired))

		// Account profile (protected)
		profileHandler := profile.NewHandler(db, logger)
		profileHandler.RegisterRoutes(api.Group("/profile", authRequired))
	}

	logger.Info().Str("port", cfg.Port).Msg("starting crewplan server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// newLogger builds the process logger. Development gets human-readable
// console output, production gets JSON lines.
func newLogger(cfg config.Config) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// newVerifier builds the configured identity token verifier.
func newVerifier(cfg config.Config) (identity.Verifier, error) {
	switch cfg.VerifierMode {
	case config.VerifierModeOIDC:
		return identity.NewOIDCVerifier(context.Background(), cfg.IDPIssuer, cfg.IDPAudience)
	default:
		return identity.NewJWTVerifier(cfg.IDPPrivateKey, cfg.IDPIssuer, cfg.IDPAudience)
	}
}
