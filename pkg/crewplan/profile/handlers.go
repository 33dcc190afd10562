package profile

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
	"github.com/crewplan/crewplan/pkg/crewplan/users"
)

// Handler serves the account profile of the authenticated user.
type Handler struct {
	users  *users.Store
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		users:  users.NewStore(db),
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "profile").Logger(),
	}
}

// Profile is the account view returned to the frontend
type Profile struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName,omitempty"`
}

// UpdateProfileRequest carries the editable profile fields. Both are
// optional but at least one must be present.
type UpdateProfileRequest struct {
	Name             *string `json:"name"`
	OrganizationName *string `json:"organizationName"`
}

// Get returns the caller's profile
// @Summary Get profile
// @Tags profile
// @Produce json
// @Success 200 {object} response.Envelope{data=Profile}
// @Failure 404 {object} response.Envelope "User not found"
// @Security BearerAuth
// @Router /profile [get]
func (h *Handler) Get(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}

	user, err := h.users.FindByUID(claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("load profile failed")
		response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	profile := Profile{Email: user.Email}
	if user.Name != nil {
		profile.Name = *user.Name
	}
	if user.Organization != nil {
		profile.OrganizationName = user.Organization.Name
	}

	response.OK(c, http.StatusOK, "", profile)
}

// Update changes the caller's display name and/or organization name
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} response.Envelope{data=Profile}
// @Failure 400 {object} response.Envelope "No fields to update"
// @Failure 404 {object} response.Envelope "User not found"
// @Security BearerAuth
// @Router /profile [put]
func (h *Handler) Update(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid profile data: "+err.Error())
		return
	}
	if req.Name == nil && req.OrganizationName == nil {
		response.Fail(c, http.StatusBadRequest, "No profile fields to update")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			response.Fail(c, http.StatusBadRequest, "Name must not be blank")
			return
		}
		if err := h.users.UpdateName(claims.Subject, name); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				response.Fail(c, http.StatusNotFound, "User not found")
				return
			}
			h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("update name failed")
			response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	if req.OrganizationName != nil {
		if _, err := h.orgs.UpdateName(claims.Subject, *req.OrganizationName); err != nil {
			switch {
			case errors.Is(err, organizations.ErrNotFound):
				response.Fail(c, http.StatusNotFound, "Organization not found")
			case errors.Is(err, organizations.ErrInvalidName):
				response.Fail(c, http.StatusBadRequest, "Organization name must not be blank")
			default:
				h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("update organization failed")
				response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
			}
			return
		}
	}

	user, err := h.users.FindByUID(claims.Subject)
	if err != nil {
		h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("reload profile failed")
		response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	profile := Profile{Email: user.Email}
	if user.Name != nil {
		profile.Name = *user.Name
	}
	if user.Organization != nil {
		profile.OrganizationName = user.Organization.Name
	}

	response.OK(c, http.StatusOK, "Profile updated successfully", profile)
}

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}
