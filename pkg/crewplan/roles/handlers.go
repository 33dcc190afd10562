package roles

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler handles role-assignment requests. Roles are scoped to the caller's
// organization through the assigned employee's department.
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new roles handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "roles").Logger(),
	}
}

// CreateRoleRequest represents the request to assign an employee to a project
type CreateRoleRequest struct {
	EmployeeID uint       `json:"employee_id" binding:"required"`
	ProjectID  uint       `json:"project_id" binding:"required"`
	Title      string     `json:"title" binding:"required"`
	Allocation int        `json:"allocation" binding:"omitempty,min=1,max=100"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// UpdateRoleRequest represents the request to update an assignment
type UpdateRoleRequest struct {
	Title      string     `json:"title" binding:"omitempty"`
	Allocation int        `json:"allocation" binding:"omitempty,min=1,max=100"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
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

// scopedEmployee loads an employee by id within the organization.
func (h *Handler) scopedEmployee(orgID, employeeID uint) (*models.Employee, error) {
	var emp models.Employee
	err := h.db.Joins("JOIN departments ON departments.id = employees.department_id").
		Where("employees.id = ? AND departments.organization_id = ?", employeeID, orgID).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// scopedProject loads a project by id whose manager belongs to the organization.
func (h *Handler) scopedProject(orgID, projectID uint) (*models.Project, error) {
	var project models.Project
	err := h.db.Joins("JOIN employees ON employees.id = projects.manager_id").
		Joins("JOIN departments ON departments.id = employees.department_id").
		Where("projects.id = ? AND departments.organization_id = ?", projectID, orgID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// scopedRole loads a role by id whose employee belongs to the organization.
func (h *Handler) scopedRole(orgID, roleID uint) (*models.Role, error) {
	var role models.Role
	err := h.db.Joins("JOIN employees ON employees.id = roles.employee_id").
		Joins("JOIN departments ON departments.id = employees.department_id").
		Where("roles.id = ? AND departments.organization_id = ?", roleID, orgID).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByProject lists assignments on a project
// @Summary List roles by project
// @Tags roles
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /roles/project/{id} [get]
func (h *Handler) GetByProject(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var roles []models.Role
	if err := h.db.Preload("Employee.Skills").Preload("Project").
		Joins("JOIN employees ON employees.id = roles.employee_id").
		Joins("JOIN departments ON departments.id = employees.department_id").
		Where("roles.project_id = ? AND departments.organization_id = ?", id, org.ID).
		Find(&roles).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch roles failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching roles")
		return
	}

	response.OK(c, http.StatusOK, "", roles)
}

// GetByEmployee lists an employee's assignments
// @Summary List roles by employee
// @Tags roles
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Employee not found"
// @Security BearerAuth
// @Router /roles/employee/{id} [get]
func (h *Handler) GetByEmployee(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	if _, err := h.scopedEmployee(org.ID, uint(id)); err != nil {
		response.Fail(c, http.StatusNotFound, "Employee not found")
		return
	}

	var roles []models.Role
	if err := h.db.Preload("Project").
		Where("employee_id = ?", id).
		Find(&roles).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch roles failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching roles")
		return
	}

	response.OK(c, http.StatusOK, "", roles)
}

// Create assigns an employee to a project
// @Summary Create a role assignment
// @Tags roles
// @Accept json
// @Produce json
// @Param request body CreateRoleRequest true "Assignment details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 404 {object} response.Envelope "Employee or project not found"
// @Security BearerAuth
// @Router /roles [post]
func (h *Handler) Create(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid role data: "+err.Error())
		return
	}

	if _, err := h.scopedEmployee(org.ID, req.EmployeeID); err != nil {
		response.Fail(c, http.StatusNotFound, "Employee not found")
		return
	}
	if _, err := h.scopedProject(org.ID, req.ProjectID); err != nil {
		response.Fail(c, http.StatusNotFound, "Project not found")
		return
	}

	allocation := req.Allocation
	if allocation == 0 {
		allocation = 100
	}

	role := models.Role{
		EmployeeID: req.EmployeeID,
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		Allocation: allocation,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if err := h.db.Create(&role).Error; err != nil {
		h.logger.Error().Err(err).Msg("create role failed")
		response.Fail(c, http.StatusInternalServerError, "Error creating role")
		return
	}

	response.OK(c, http.StatusCreated, "Role created successfully", role)
}

// Update modifies an assignment
// @Summary Update a role assignment
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param request body UpdateRoleRequest true "Updated details"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Role not found"
// @Security BearerAuth
// @Router /roles/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid role ID")
		return
	}

	role, err := h.scopedRole(org.ID, uint(id))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "Role not found")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid role data: "+err.Error())
		return
	}

	if req.Title != "" {
		role.Title = req.Title
	}
	if req.Allocation != 0 {
		role.Allocation = req.Allocation
	}
	if req.StartDate != nil {
		role.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		role.EndDate = req.EndDate
	}
	if err := h.db.Save(role).Error; err != nil {
		h.logger.Error().Err(err).Msg("update role failed")
		response.Fail(c, http.StatusInternalServerError, "Error updating role")
		return
	}

	response.OK(c, http.StatusOK, "Role updated successfully", role)
}

// Delete removes an assignment
// @Summary Delete a role assignment
// @Tags roles
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Role not found"
// @Security BearerAuth
// @Router /roles/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid role ID")
		return
	}

	role, err := h.scopedRole(org.ID, uint(id))
	if err != nil {
		response.Fail(c, http.StatusNotFound, "Role not found")
		return
	}

	if err := h.db.Delete(role).Error; err != nil {
		h.logger.Error().Err(err).Msg("delete role failed")
		response.Fail(c, http.StatusInternalServerError, "Error deleting role")
		return
	}

	response.OK(c, http.StatusOK, "Role deleted", nil)
}

// RegisterRoutes registers role routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/project/:id", h.GetByProject)
	rg.GET("/employee/:id", h.GetByEmployee)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
