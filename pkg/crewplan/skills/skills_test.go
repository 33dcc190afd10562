package skills

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/auth"
	"github.com/crewplan/crewplan/pkg/crewplan/database"
	"github.com/crewplan/crewplan/pkg/crewplan/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func identityAs(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUID, uid)
		c.Next()
	}
}

func setupRouter(db *gorm.DB, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, zerolog.Nop())
	group := r.Group("/api/skills")
	group.Use(identityAs(uid))
	handler.RegisterRoutes(group)
	return r
}

func postSkill(r *gin.Engine, name string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(CreateSkillRequest{Name: name})
	req, _ := http.NewRequest("POST", "/api/skills", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateAndListSkills(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Organization{Name: "Org", OwnerUID: "uid-1"})
	r := setupRouter(db, "uid-1")

	if resp := postSkill(r, "Go"); resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	req, _ := http.NewRequest("GET", "/api/skills/getAll", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var env struct {
		Data []models.Skill `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &env)
	if len(env.Data) != 1 || env.Data[0].Name != "Go" {
		t.Errorf("Expected skill Go, got %+v", env.Data)
	}
}

func TestDuplicateSkillNameConflict(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Organization{Name: "Org", OwnerUID: "uid-1"})
	r := setupRouter(db, "uid-1")

	if resp := postSkill(r, "Go"); resp.Code != http.StatusCreated {
		t.Fatalf("First create failed: %d", resp.Code)
	}
	if resp := postSkill(r, "Go"); resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate skill, got %d", resp.Code)
	}
}

func TestSkillsScopedPerOrganization(t *testing.T) {
	db := setupTestDB(t)
	org1 := models.Organization{Name: "One", OwnerUID: "uid-1"}
	org2 := models.Organization{Name: "Two", OwnerUID: "uid-2"}
	db.Create(&org1)
	db.Create(&org2)
	db.Create(&models.Skill{Name: "Go", OrganizationID: org1.ID})
	db.Create(&models.Skill{Name: "Rust", OrganizationID: org2.ID})

	req, _ := http.NewRequest("GET", "/api/skills/getAll", nil)
	resp := httptest.NewRecorder()
	setupRouter(db, "uid-1").ServeHTTP(resp, req)

	var env struct {
		Data []models.Skill `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &env)
	if len(env.Data) != 1 || env.Data[0].Name != "Go" {
		t.Errorf("Expected only own-org skills, got %+v", env.Data)
	}
}

func TestSkillsWithoutOrganizationIs404(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, "uid-1")

	req, _ := http.NewRequest("GET", "/api/skills/getAll", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.Code)
	}
}
