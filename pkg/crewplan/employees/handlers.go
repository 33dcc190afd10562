package employees

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

// Handler handles employee requests. Employees are scoped to the caller's
// organization transitively through their department.
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new employees handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "employees").Logger(),
	}
}

// CreateEmployeeRequest represents the request to create an employee
type CreateEmployeeRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	DepartmentID uint   `json:"department_id" binding:"required"`
	SkillIDs     []uint `json:"skill_ids"`
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

// departmentIDs returns the ids of the organization's departments.
func (h *Handler) departmentIDs(orgID uint) ([]uint, error) {
	var ids []uint
	err := h.db.Model(&models.Department{}).
		Where("organization_id = ?", orgID).
		Pluck("id", &ids).Error
	return ids, err
}

// GetAll lists the organization's employees with department, skills and roles
// @Summary List employees
// @Description Get all employees in the caller's organization with department, skills and project roles
// @Tags employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /employees/getAll [get]
func (h *Handler) GetAll(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	deptIDs, err := h.departmentIDs(org.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("fetch department ids failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching employees")
		return
	}
	if len(deptIDs) == 0 {
		response.OK(c, http.StatusOK, "", []models.Employee{})
		return
	}

	var emps []models.Employee
	if err := h.db.Preload("Department").
		Preload("Skills").
		Preload("Roles.Project").
		Where("department_id IN ?", deptIDs).
		Find(&emps).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch employees failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching employees")
		return
	}

	response.OK(c, http.StatusOK, "", emps)
}

// Create adds an employee to one of the organization's departments
// @Summary Create an employee
// @Tags employees
// @Accept json
// @Produce json
// @Param request body CreateEmployeeRequest true "Employee details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /employees [post]
func (h *Handler) Create(c *gin.Context) {
	org := h.resolveOrg(c)
	if org == nil {
		return
	}

	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid employee data: "+err.Error())
		return
	}

	// The target department must belong to the caller's organization.
	var dept models.Department
	if err := h.db.Where("id = ? AND organization_id = ?", req.DepartmentID, org.ID).
		First(&dept).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Department not found")
		return
	}

	var skills []models.Skill
	if len(req.SkillIDs) > 0 {
		if err := h.db.Where("id IN ? AND organization_id = ?", req.SkillIDs, org.ID).
			Find(&skills).Error; err != nil {
			h.logger.Error().Err(err).Msg("fetch skills failed")
			response.Fail(c, http.StatusInternalServerError, "Error creating employee")
			return
		}
	}

	emp := models.Employee{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DepartmentID: dept.ID,
		Skills:       skills,
	}
	if err := h.db.Create(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, http.StatusConflict, "An employee already exists with this email.")
			return
		}
		h.logger.Error().Err(err).Msg("create employee failed")
		response.Fail(c, http.StatusInternalServerError, "Error creating employee")
		return
	}

	response.OK(c, http.StatusCreated, "Employee created successfully", emp)
}

// GetByDepartment lists employees of one department
// @Summary List employees of a department
// @Tags employees
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Department not found"
// @Security BearerAuth
// @Router /employees/department/{id} [get]
func (h *Handler) GetByDepartment(c *gin.Context) {
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
	if err := h.db.Where("id = ? AND organization_id = ?", id, org.ID).First(&dept).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Department not found")
		return
	}

	var emps []models.Employee
	if err := h.db.Preload("Skills").
		Preload("Roles.Project").
		Where("department_id = ?", dept.ID).
		Find(&emps).Error; err != nil {
		h.logger.Error().Err(err).Msg("fetch employees failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching employees")
		return
	}

	response.OK(c, http.StatusOK, "", emps)
}

// RegisterRoutes registers employee routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/getAll", h.GetAll)
	rg.POST("", h.Create)
	rg.GET("/department/:id", h.GetByDepartment)
}
