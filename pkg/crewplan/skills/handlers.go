package skills

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles skill requests
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new skills handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "skills").Logger(),
	}
}

// CreateSkillRequest represents the request to create a skill
type CreateSkillRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

func (h *Handler) resolveOrg(c *gin.Context) *models.Organization {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return nil
	}

	org, err := h.orgs.FindByOwner(claims.Subject)
	if err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Organization not found")
			return nil
		}
		h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("resolve organization failed")
		response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		return nil
	}
	return org
}

// GetAll lists the organization's skills
// @Summary List skills
// @Tags skills
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /skills/getAll [get]
func (h *Handler) GetAll(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var skills []models.Skill
	if err := h.db.Where("organization_id = ?", org.ID).
		Order("name asc").
		Find(&skills).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch skills failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching skills")
		return
	}

	response.OK(c, http.StatusOK, "", skills)
}

// Create adds a skill to the organization
// @Summary Create a skill
// @Tags skills
// @Accept json
// @Produce json
// @Param request body CreateSkillRequest true "Skill details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 409 {object} response.Envelope "Skill already exists"
// @Security BearerAuth
// @Router /skills [post]
func (h *Handler) Create(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var req CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid or missing skill name.")
		return
	}

	skill := models.Skill{
		Name:           strings.TrimSpace(req.Name),
		OrganizationID: org.ID,
	}
	if err := h.db.Create(&skill).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, http.StatusConflict, "Skill already exists in this organization.")
			return
		}
		h.logger.Error().Err(err).Msg("create skill failed")
		response.Fail(c, http.StatusInternalServerError, "Error creating skill")
		return
	}

	response.OK(c, http.StatusCreated, "Skill created successfully", skill)
}

// RegisterRoutes registers skill routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/getAll", h.GetAll)
	rg.POST("", h.Create)
}
