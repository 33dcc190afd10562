package departments

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles department requests. Every query is scoped to the caller's
// organization; there is no unscoped fallback.
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new departments handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "departments").Logger(),
	}
}

// CreateDepartmentRequest represents the request to create a department
type CreateDepartmentRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	LeaderID *uint  `json:"leader_id"`
}

// UpdateDepartmentRequest represents the request to update a department
type UpdateDepartmentRequest struct {
	Name     string `json:"name" binding:"omitempty,min=1,max=100"`
	LeaderID *uint  `json:"leader_id"`
}

// resolveOrg resolves the caller's organization or writes the failure
// response. Returns nil when the request has already been answered.
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

// findScoped loads a department by id within the organization, or writes 404.
func (h *Handler) findScoped(c *gin.Context, orgID uint) *models.Department {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid department ID")
		return nil
	}

	var dept models.Department
	if err := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&dept).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Department not found")
		return nil
	}
	return &dept
}

// GetAll lists the organization's departments
// @Summary List departments
// @Description Get all departments in the caller's organization, ordered by name
// @Tags departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /departments/getAll [get]
func (h *Handler) GetAll(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var depts []models.Department
	if err := h.db.Preload("Leader").
		Where("organization_id = ?", org.ID).
		Order("name asc").
		Find(&depts).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch departments failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching departments")
		return
	}

	response.OK(c, http.StatusOK, "", depts)
}

// Create adds a department to the organization
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Param request body CreateDepartmentRequest true "Department details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Validation error"
// @Security BearerAuth
// @Router /departments [post]
func (h *Handler) Create(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid or missing department name.")
		return
	}

	dept := models.Department{
		Name:           strings.TrimSpace(req.Name),
		OrganizationID: org.ID,
		LeaderID:       req.LeaderID,
	}
	if err := h.db.Create(&dept).Error; err != nil {
		h.logger.Error().Err(err).Msg("create department failed")
		response.Fail(c, http.StatusInternalServerError, "Error creating department")
		return
	}

	response.OK(c, http.StatusCreated, "Department created successfully", dept)
}

// Update modifies a department in the organization
// @Summary Update a department
// @Tags departments
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Param request body UpdateDepartmentRequest true "Updated details"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /departments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}
	dept := h.findScoped(c, org.ID)
	if dept == nil {
		return
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Name != "" {
		dept.Name = strings.TrimSpace(req.Name)
	}
	if req.LeaderID != nil {
		dept.LeaderID = req.LeaderID
	}
	if err := h.db.Save(dept).Error; err != nil {
		h.logger.Error().Err(err).Msg("update department failed")
		response.Fail(c, http.StatusInternalServerError, "Error updating department")
		return
	}

	response.OK(c, http.StatusOK, "Department updated successfully", dept)
}

// Delete removes a department from the organization
// @Summary Delete a department
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /departments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}
	dept := h.findScoped(c, org.ID)
	if dept == nil {
		return
	}

	if err := h.db.Delete(dept).Error; err != nil {
		h.logger.Error().Err(err).Msg("delete department failed")
		response.Fail(c, http.StatusInternalServerError, "Error deleting department")
		return
	}

	response.OK(c, http.StatusOK, "Department deleted", nil)
}

// Get returns one department with its leader
// @Summary Get a department
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /departments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid department ID")
		return
	}

	var dept models.Department
	if err := h.db.Preload("Leader").
		Where("id = ? AND organization_id = ?", id, org.ID).
		First(&dept).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Department not found")
		return
	}

	response.OK(c, http.StatusOK, "", dept)
}

// GetWithEmployees returns one department with its employees and their skills
// @Summary Get a department with employees
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /departments/{id}/employees [get]
func (h *Handler) GetWithEmployees(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid department ID")
		return
	}

	var dept models.Department
	if err := h.db.Preload("Employees.Skills").
		Where("id = ? AND organization_id = ?", id, org.ID).
		First(&dept).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Department not found")
		return
	}

	response.OK(c, http.StatusOK, "", dept)
}

// RegisterRoutes registers department routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/getAll", h.GetAll)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/employees", h.GetWithEmployees)
}
