package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles identity-sync requests
type Handler struct {
	sync   *SyncService
	logger zerolog.Logger
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		sync:   NewSyncService(NewStore(db)),
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// SyncRequest optionally overrides the display name from the token. The
// body may be absent entirely.
type SyncRequest struct {
	Name string `json:"name"`
}

// SyncResponse is the payload returned by the sync endpoint. RedirectTo is a
// client-navigation hint, not an authorization decision.
type SyncResponse struct {
	User            *models.User         `json:"user"`
	Organization    *models.Organization `json:"organization"`
	HasOrganization bool                 `json:"hasOrganization"`
	RedirectTo      string               `json:"redirectTo"`
}

// Sync reconciles the verified identity with the local user directory
// @Summary Sync the authenticated identity
// @Description Find or create the local user for the verified token and report organization ownership
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "UID or email missing"
// @Failure 401 {object} map[string]string "Authentication failed"
// @Failure 409 {object} response.Envelope "Email bound to another account"
// @Security BearerAuth
// @Router /auth/sync [post]
func (h *Handler) Sync(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}
	if claims.Subject == "" {
		response.Fail(c, http.StatusBadRequest, "Bad Request: UID missing from token.")
		return
	}

	name := claims.Name
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Name != "" {
		name = req.Name
	}

	result, err := h.sync.Sync(claims.Subject, claims.Email, name)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired):
			response.Fail(c, http.StatusBadRequest, "Email is required to create a user.")
		case errors.Is(err, ErrEmailConflict):
			response.Fail(c, http.StatusConflict, "An account already exists with this email.")
		default:
			h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("sync failed")
			response.Fail(c, http.StatusInternalServerError, "Internal Server Error: Could not sync user.")
		}
		return
	}

	redirectTo := "/startup"
	if result.HasOrganization {
		redirectTo = "/dashboard"
	}

	response.OK(c, http.StatusOK, "User synchronized successfully", SyncResponse{
		User:            result.User,
		Organization:    result.Organization,
		HasOrganization: result.HasOrganization,
		RedirectTo:      redirectTo,
	})
}

// RegisterRoutes registers auth-sync routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Sync)
}
