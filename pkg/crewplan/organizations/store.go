package organizations

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/crewplan/crewplan/pkg/crewplan/models"
)

var (
	// ErrNotFound indicates the owner has no organization.
	ErrNotFound = errors.New("organization not found")
	// ErrAlreadyExists indicates the owner already owns an organization.
	ErrAlreadyExists = errors.New("organization already exists for this user")
	// ErrInvalidName indicates an empty or blank organization name.
	ErrInvalidName = errors.New("invalid organization name")
)

// Store is the persistent organization directory. FindByOwner is the scoping
// primitive every org-scoped query goes through.
type Store struct {
	db *gorm.DB
}

// NewStore creates an organization store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateForOwner creates an organization owned by the given subject id.
// One organization per owner is enforced by the unique index on owner_uid;
// the pre-check only exists to answer fast without a write attempt.
func (s *Store) CreateForOwner(ownerUID, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var existing models.Organization
	if err := s.db.Where("owner_uid = ?", ownerUID).First(&existing).Error; err == nil {
		return nil, ErrAlreadyExists
	}

	org := models.Organization{
		Name:     name,
		OwnerUID: ownerUID,
	}
	if err := s.db.Create(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &org, nil
}

// FindByOwner returns the organization owned by the given subject id.
func (s *Store) FindByOwner(ownerUID string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.Where("owner_uid = ?", ownerUID).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateName renames the organization owned by the given subject id.
func (s *Store) UpdateName(ownerUID, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	org, err := s.FindByOwner(ownerUID)
	if err != nil {
		return nil, err
	}

	org.Name = name
	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}
