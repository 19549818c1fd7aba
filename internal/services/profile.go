package services

import (
	"context"
	"errors"
	"strings"

	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/store"
)

// ProfileService handles accounts: sign-up, lookup, username changes and the
// availability check used by both the sign-up and settings flows.
type ProfileService struct {
	store store.Store
}

func NewProfileService(s store.Store) *ProfileService { return &ProfileService{store: s} }

// Create registers a new profile. Usernames are stored lowercase.
func (s *ProfileService) Create(ctx context.Context, id string, req model.CreateProfileRequest) (*model.Profile, error) {
	p := &model.Profile{
		ID:       id,
		Username: strings.ToLower(strings.TrimSpace(req.Username)),
		Email:    strings.TrimSpace(req.Email),
	}
	return s.store.Profiles().Create(ctx, p)
}

// Get returns the profile for an authenticated identity.
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	return s.store.Profiles().Get(ctx, id)
}

// UpdateUsername changes the unique username; model.ErrConflict when taken.
func (s *ProfileService) UpdateUsername(ctx context.Context, id, username string) (*model.Profile, error) {
	return s.store.Profiles().UpdateUsername(ctx, id, strings.ToLower(strings.TrimSpace(username)))
}

// CheckAvailability reports whether a candidate username is free. Names that
// fail validation are reported as unavailable rather than as an error.
func (s *ProfileService) CheckAvailability(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < 3 {
		return false, nil
	}
	_, err := s.store.Profiles().GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
