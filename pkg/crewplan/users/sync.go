package users

import (
	"errors"

	"github.com/crewplan/crewplan/pkg/crewplan/models"
)

// SyncResult is the outcome of reconciling a verified identity with the
// local user directory.
type SyncResult struct {
	User            *models.User
	Organization    *models.Organization
	HasOrganization bool
}

// SyncService reconciles identity-provider accounts with local user records.
type SyncService struct {
	store *Store
}

// NewSyncService creates a sync service over the given user store.
func NewSyncService(store *Store) *SyncService {
	return &SyncService{store: store}
}

// Sync finds or creates the local user for the given subject id and reports
// whether they own an organization. Idempotent under repeated calls with a
// stable email: the second call only performs the email-equality check.
//
// Email may be empty (phone sign-in); an existing user is returned as-is in
// that case, but a new user cannot be created without one (ErrEmailRequired).
// A duplicate email bound to a different subject id is ErrEmailConflict.
func (s *SyncService) Sync(uid, email, name string) (*SyncResult, error) {
	user, err := s.store.FindByUID(uid)
	if err == nil {
		// The identity provider is the source of truth for email once one exists.
		if email != "" && user.Email != email {
			if err := s.store.UpdateEmail(uid, email); err != nil {
				return nil, err
			}
			user.Email = email
		}

		org := user.Organization
		return &SyncResult{
			User:            user,
			Organization:    org,
			HasOrganization: org != nil,
		}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if email == "" {
		return nil, ErrEmailRequired
	}

	newUser := &models.User{
		UID:   uid,
		Email: email,
	}
	if name != "" {
		newUser.Name = &name
	}
	if err := s.store.Create(newUser); err != nil {
		return nil, err
	}

	// A freshly created user cannot already own an organization.
	return &SyncResult{
		User:            newUser,
		Organization:    nil,
		HasOrganization: false,
	}, nil
}
