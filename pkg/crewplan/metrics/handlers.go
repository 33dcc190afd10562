package metrics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
	"github.com/crewplan/crewplan/pkg/crewplan/organizations"
	"github.com/crewplan/crewplan/pkg/crewplan/response"
)

// Handler serves dashboard counters for the caller's organization.
type Handler struct {
	db     *gorm.DB
	orgs   *organizations.Store
	logger zerolog.Logger
}

// NewHandler creates a new metrics handler
func NewHandler(db *gorm.DB, logger zerolog.Logger) *Handler {
	return &Handler{
		db:     db,
		orgs:   organizations.NewStore(db),
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Metrics is the dashboard summary payload
type Metrics struct {
	EmployeesCount   int64 `json:"employeesCount"`
	DepartmentsCount int64 `json:"departmentsCount"`
	ProjectsCount    int64 `json:"projectsCount"`
}

// Get returns employee, department and project counts
// @Summary Dashboard metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} response.Envelope{data=Metrics}
// @Failure 404 {object} response.Envelope "Organization not found"
// @Security BearerAuth
// @Router /metrics [get]
func (h *Handler) Get(c *gin.Context) {
	claims, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized: No user data from token.")
		return
	}

	org, err := h.orgs.FindByOwner(claims.Subject)
	if err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Organization not found")
			return
		}
		h.logger.Error().Err(err).Str("uid", claims.Subject).Msg("resolve organization failed")
		response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var deptIDs []uint
	if err := h.db.Model(&models.Department{}).
		Where("organization_id = ?", org.ID).
		Pluck("id", &deptIDs).Error; err != nil {
		h.logger.Error().Err(err).Msg("count departments failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching metrics")
		return
	}

	// No departments means no employees and no projects can exist yet.
	metrics := Metrics{DepartmentsCount: int64(len(deptIDs))}
	if len(deptIDs) == 0 {
		response.OK(c, http.StatusOK, "", metrics)
		return
	}

	var empIDs []uint
	if err := h.db.Model(&models.Employee{}).
		Where("department_id IN ?", deptIDs).
		Pluck("id", &empIDs).Error; err != nil {
		h.logger.Error().Err(err).Msg("count employees failed")
		response.Fail(c, http.StatusInternalServerError, "Error fetching metrics")
		return
	}
	metrics.EmployeesCount = int64(len(empIDs))

	if len(empIDs) > 0 {
		if err := h.db.Model(&models.Project{}).
			Where("manager_id IN ?", empIDs).
			Count(&metrics.ProjectsCount).Error; err != nil {
			h.logger.Error().Err(err).Msg("count projects failed")
			response.Fail(c, http.StatusInternalServerError, "Error fetching metrics")
			return
		}
	}

	response.OK(c, http.StatusOK, "", metrics)
}

// RegisterRoutes registers metrics routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
}
