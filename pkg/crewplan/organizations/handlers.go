package organizations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles organization requests
type Handler struct {
	store  *Store
	logger zerolog.Logger
}

// NewHandler creates a new organizations handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  NewStore(db),
		logger: logger.With().Str("component", "organizations").Logger(),
	}
}

// CreateOrgRequest represents the request to create an organization
type CreateOrgRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Create creates the caller's organization
// @Summary Create an organization
// @Description Create an organization owned by the authenticated user. Each user owns at most one.
// @Tags organization
// @Accept json
// @Produce json
// @Param request body CreateOrgRequest true "Organization details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Invalid or missing name"
// @Failure 409 {object} response.Envelope "Organization already exists"
// @Security BearerAuth
// @Router /organization [post]
func (h *Handler) Create(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid or missing organization name.")
		return
	}

	org, err := h.store.CreateForOwner(claims.Subject, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			response.Fail(c, http.StatusBadRequest, "Invalid or missing organization name.")
		case errors.Is(err, ErrAlreadyExists):
			response.Fail(c, http.StatusConflict, "Organization already exists for this user.")
		default:
			h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("create organization failed")
			response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	response.OK(c, http.StatusCreated, "Organization created successfully", org)
}

// Me returns the caller's organization
// @Summary Get my organization
// @Description Get the organization owned by the authenticated user
// @Tags organization
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /organization/me [get]
func (h *Handler) Me(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}

	org, err := h.store.FindByOwner(claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Organization not found")
			return
		}
		h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("fetch organization failed")
		response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	response.OK(c, http.StatusOK, "", org)
}

// RegisterRoutes registers organization routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/me", h.Me)
}
