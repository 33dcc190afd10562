package organizations

import (
	"bytes"
	"encoding/json"
	"errors"
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
		c.Set(auth.ContextKeyEmail, uid+"@x.com")
		c.Next()
	}
}

func setupRouter(db *gorm.DB, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, zerolog.Nop())
	group := r.Group("/api/organization")
	group.Use(identityAs(uid))
	handler.RegisterRoutes(group)
	return r
}

func postOrg(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/api/organization", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateOrganization(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, "uid-1")

	resp := postOrg(r, CreateOrgRequest{Name: "Acme"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var org models.Organization
	if err := db.Where("owner_uid = ?", "uid-1").First(&org).Error; err != nil {
		t.Fatalf("Organization not persisted: %v", err)
	}
	if org.Name != "Acme" {
		t.Errorf("Expected name Acme, got %s", org.Name)
	}
}

func TestCreateOrganizationConflict(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, "uid-1")

	if resp := postOrg(r, CreateOrgRequest{Name: "Acme"}); resp.Code != http.StatusCreated {
		t.Fatalf("First create failed: %d", resp.Code)
	}
	resp := postOrg(r, CreateOrgRequest{Name: "Second"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Organization{}).Where("owner_uid = ?", "uid-1").Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one organization for owner, got %d", count)
	}
}

func TestCreateOrganizationInvalidName(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, "uid-1")

	if resp := postOrg(r, map[string]string{}); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", resp.Code)
	}
	if resp := postOrg(r, map[string]interface{}{"name": 42}); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-string name, got %d", resp.Code)
	}
	if resp := postOrg(r, CreateOrgRequest{Name: "   "}); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank name, got %d", resp.Code)
	}
}

func TestMeWithoutOrganization(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, "uid-1")

	req, _ := http.NewRequest("GET", "/api/organization/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMeReturnsOwnOrganization(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Organization{Name: "Acme", OwnerUID: "uid-1"})
	db.Create(&models.Organization{Name: "Globex", OwnerUID: "uid-2"})

	r := setupRouter(db, "uid-1")
	req, _ := http.NewRequest("GET", "/api/organization/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var env struct {
		Data models.Organization `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &env)
	if env.Data.Name != "Acme" {
		t.Errorf("Expected own organization Acme, got %s", env.Data.Name)
	}
}

func TestStoreUpdateName(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if _, err := store.UpdateName("uid-1", "New Name"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing org, got %v", err)
	}

	if _, err := store.CreateForOwner("uid-1", "Acme"); err != nil {
		t.Fatalf("CreateForOwner failed: %v", err)
	}
	org, err := store.UpdateName("uid-1", "Acme Corp")
	if err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}
	if org.Name != "Acme Corp" {
		t.Errorf("Expected Acme Corp, got %s", org.Name)
	}

	if _, err := store.UpdateName("uid-1", "  "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName for blank name, got %v", err)
	}
}

func TestStoreCreateDefensiveValidation(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if _, err := store.CreateForOwner("uid-1", ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
}
