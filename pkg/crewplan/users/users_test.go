package users

import (
	"errors"
	"testing"

	"gorm.io/gorm"

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

func countUsers(t *testing.T, db *gorm.DB, uid string) int64 {
	var count int64
	if err := db.Model(&models.User{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return count
}

func TestSyncCreatesUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	result, err := svc.Sync("uid-1", "a@x.com", "Alice")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if result.HasOrganization {
		t.Error("Fresh user should not have an organization")
	}
	if result.Organization != nil {
		t.Error("Fresh user organization should be nil")
	}
	if result.User.Email != "a@x.com" {
		t.Errorf("Expected email a@x.com, got %s", result.User.Email)
	}
	if result.User.Name == nil || *result.User.Name != "Alice" {
		t.Errorf("Expected name Alice, got %v", result.User.Name)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	first, err := svc.Sync("uid-1", "a@x.com", "Alice")
	if err != nil {
		t.Fatalf("First sync failed: %v", err)
	}
	second, err := svc.Sync("uid-1", "a@x.com", "Alice")
	if err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}

	if first.HasOrganization || second.HasOrganization {
		t.Error("Neither sync should report an organization")
	}
	if second.User.Email != "a@x.com" {
		t.Errorf("Expected stable email, got %s", second.User.Email)
	}
	if got := countUsers(t, db, "uid-1"); got != 1 {
		t.Errorf("Expected exactly one user row, got %d", got)
	}
}

func TestSyncReconcilesEmailDrift(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	if _, err := svc.Sync("uid-1", "a@x.com", ""); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	result, err := svc.Sync("uid-1", "b@x.com", "")
	if err != nil {
		t.Fatalf("Drift sync failed: %v", err)
	}
	if result.User.Email != "b@x.com" {
		t.Errorf("Expected updated email b@x.com, got %s", result.User.Email)
	}

	var stored models.User
	if err := db.Where("uid = ?", "uid-1").First(&stored).Error; err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if stored.Email != "b@x.com" {
		t.Errorf("Expected stored email b@x.com, got %s", stored.Email)
	}
}

func TestSyncExistingUserWithoutEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	if _, err := svc.Sync("uid-1", "a@x.com", ""); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	// Emailless token for a known user keeps the stored email.
	result, err := svc.Sync("uid-1", "", "")
	if err != nil {
		t.Fatalf("Emailless sync for existing user failed: %v", err)
	}
	if result.User.Email != "a@x.com" {
		t.Errorf("Expected stored email preserved, got %s", result.User.Email)
	}
}

func TestSyncNewUserWithoutEmailRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	_, err := svc.Sync("uid-new", "", "")
	if !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("Expected ErrEmailRequired, got %v", err)
	}
	if got := countUsers(t, db, "uid-new"); got != 0 {
		t.Errorf("Expected no row created, got %d", got)
	}
}

func TestSyncDuplicateEmailConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	if _, err := svc.Sync("uid-1", "a@x.com", ""); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	_, err := svc.Sync("uid-2", "a@x.com", "")
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("Expected ErrEmailConflict, got %v", err)
	}
	if got := countUsers(t, db, "uid-2"); got != 0 {
		t.Errorf("Expected no row for conflicting subject, got %d", got)
	}
}

func TestSyncReportsOrganization(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSyncService(NewStore(db))

	if _, err := svc.Sync("uid-1", "a@x.com", ""); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}
	org := models.Organization{Name: "Acme", OwnerUID: "uid-1"}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("Create organization failed: %v", err)
	}

	result, err := svc.Sync("uid-1", "a@x.com", "")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !result.HasOrganization {
		t.Error("Expected HasOrganization true")
	}
	if result.Organization == nil || result.Organization.Name != "Acme" {
		t.Errorf("Expected organization Acme, got %+v", result.Organization)
	}
}

func TestStoreFindByEmail(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if err := store.Create(&models.User{UID: "uid-1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	user, err := store.FindByEmail("a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if user.UID != "uid-1" {
		t.Errorf("Expected uid-1, got %s", user.UID)
	}

	if _, err := store.FindByEmail("missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpdateEmailMissingUser(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if err := store.UpdateEmail("ghost", "g@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpsertConvergesOnUID(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if err := store.Create(&models.User{UID: "uid-1", Email: "a@x.com"}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	// A concurrent first-sync replay lands on the same row.
	if err := store.Create(&models.User{UID: "uid-1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Replayed create failed: %v", err)
	}
	if got := countUsers(t, db, "uid-1"); got != 1 {
		t.Errorf("Expected one row after upsert replay, got %d", got)
	}
}
