package users

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crewplan/crewplan/pkg/crewplan/models"
)

var (
	// ErrNotFound indicates no user exists for the given key.
	ErrNotFound = errors.New("user not found")
	// ErrEmailRequired indicates a new user cannot be created without an email.
	ErrEmailRequired = errors.New("email is required to create a user")
	// ErrEmailConflict indicates the email is already bound to a different subject id.
	ErrEmailConflict = errors.New("an account already exists with this email")
)

// Store is the persistent user directory, keyed by the identity provider's
// subject id.
type Store struct {
	db *gorm.DB
}

// NewStore creates a user store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByUID returns the user with the given subject id, with their
// organization eagerly loaded.
func (s *Store) FindByUID(uid string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Organization").Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user bound to the given email.
func (s *Store) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. The insert is an upsert keyed on uid so two
// concurrent first-syncs for the same new identity converge to one row; a
// uniqueness violation on email surfaces as ErrEmailConflict.
func (s *Store) Create(user *models.User) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email"}),
	}).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailConflict
	}
	return err
}

// UpdateEmail sets the stored email for the given subject id.
func (s *Store) UpdateEmail(uid, email string) error {
	res := s.db.Model(&models.User{}).Where("uid = ?", uid).Update("email", email)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrEmailConflict
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateName sets the stored display name for the given subject id.
func (s *Store) UpdateName(uid, name string) error {
	res := s.db.Model(&models.User{}).Where("uid = ?", uid).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
