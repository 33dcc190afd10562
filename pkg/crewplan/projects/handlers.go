package projects

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles project requests. Projects are scoped to the caller's
// organization through the manager's department.
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new projects handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "projects").Logger(),
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=200"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	ManagerID   uint      `json:"manager_id" binding:"required"`
	Status      string    `json:"status" binding:"omitempty,oneof=planned active completed"`
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

// employeeIDs returns the ids of all employees in the organization.
func (h *Handler) employeeIDs(orgID uint) ([]uint, error) {
	var deptIDs []uint
	if err := h.db.Model(&models.Department{}).
		Where("organization_id = ?", orgID).
		Pluck("id", &deptIDs).Error; err != nil {
		return nil, err
	}
	if len(deptIDs) == 0 {
		return nil, nil
	}

	var empIDs []uint
	if err := h.db.Model(&models.Employee{}).
		Where("department_id IN ?", deptIDs).
		Pluck("id", &empIDs).Error; err != nil {
		return nil, err
	}
	return empIDs, nil
}

// GetAll lists the organization's projects with their managers
// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /projects/getAll [get]
func (h *Handler) GetAll(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	empIDs, err := h.employeeIDs(org.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("fetch employee ids failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching projects")
		return
	}
	if len(empIDs) == 0 {
		response.OK(c, http.StatusOK, "", []models.Project{})
		return
	}

	var projects []models.Project
	if err := h.db.Preload("Manager").
		Where("manager_id IN ?", empIDs).
		Find(&projects).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch projects failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching projects")
		return
	}

	response.OK(c, http.StatusOK, "", projects)
}

// Create adds a project managed by one of the organization's employees
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "Project details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 404 {object} response.Envelope "Manager not found"
// @Security BearerAuth
// @Router /projects [post]
func (h *Handler) Create(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid project data: "+err.Error())
		return
	}
	if !req.EndDate.After(req.StartDate) {
		response.Fail(c, http.StatusBadRequest, "Project end date must be after start date.")
		return
	}

	// The manager must be an employee of the caller's organization.
	var manager models.Employee
	if err := h.db.Joins("JOIN departments ON departments.id = employees.department_id").
		Where("employees.id = ? AND departments.organization_id = ?", req.ManagerID, org.ID).
		First(&manager).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Project manager not found in this organization")
		return
	}

	status := models.ProjectStatus(req.Status)
	if status == "" {
		status = models.ProjectStatusPlanned
	}

	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
		ManagerID:   manager.ID,
	}
	if err := h.db.Create(&project).Error; err != nil {
		h.logger.Error().Err(err).Msg("create project failed")
		response.Fail(c, http.StatusInternalServerError, "Error creating project")
		return
	}

	response.OK(c, http.StatusCreated, "Project created successfully", project)
}

// TeamSize returns the number of role assignments on a project
// @Summary Count project team members
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Project not found"
// @Security BearerAuth
// @Router /projects/{id}/team [get]
func (h *Handler) TeamSize(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid project ID")
		return
	}

	empIDs, err := h.employeeIDs(org.ID)
	if err != nil || len(empIDs) == 0 {
		response.Fail(c, http.StatusNotFound, "Project not found")
		return
	}

	var project models.Project
	if err := h.db.Where("id = ? AND manager_id IN ?", id, empIDs).First(&project).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Project not found")
		return
	}

	var count int64
	if err := h.db.Model(&models.Role{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		h.logger.Error().Err(err).Msg("count team members failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching team members")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"teamMembers": count})
}

// RegisterRoutes registers project routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/getAll", h.GetAll)
	rg.POST("", h.Create)
	rg.GET("/:id/team", h.TeamSize)
}
