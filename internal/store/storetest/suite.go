// Package storetest holds a driver-agnostic compliance suite exercised by
// each store implementation's tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store
// implementation. makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	ownerID := "u-" + uuid.NewString()
	username := "user_" + uuid.NewString()[:8]

	// Profiles
	p, err := s.Profiles().Create(ctx, &model.Profile{ID: ownerID, Username: username, Email: username + "@example.test"})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("CreateProfile: zero created_at")
	}
	if got, err := s.Profiles().GetByUsername(ctx, username); err != nil || got.ID != ownerID {
		t.Fatalf("GetByUsername: got=%v err=%v", got, err)
	}
	if _, err := s.Profiles().Create(ctx, &model.Profile{ID: "u-" + uuid.NewString(), Username: username, Email: "x@example.test"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate username: want ErrConflict, got %v", err)
	}

	// Souvenirs: round-trip with verbatim coordinates
	in := &model.Souvenir{
		OwnerID:    ownerID,
		Title:      "Harbour at dawn",
		AudioURL:   "https://blob/audio/1.webm",
		ImageURL:   "https://blob/images/1.png",
		Transcript: "gulls over the water",
		Latitude:   40.7128,
		Longitude:  -74.0060,
	}
	sv, err := s.Souvenirs().Create(ctx, in)
	if err != nil {
		t.Fatalf("CreateSouvenir: %v", err)
	}
	got, err := s.Souvenirs().GetByID(ctx, sv.ID)
	if err != nil {
		t.Fatalf("GetSouvenir: %v", err)
	}
	if got.Latitude != 40.7128 || got.Longitude != -74.0060 {
		t.Fatalf("coordinates not persisted verbatim: %v/%v", got.Latitude, got.Longitude)
	}

	// Required-field constraints
	bad := *in
	bad.Transcript = ""
	if _, err := s.Souvenirs().Create(ctx, &bad); err == nil {
		t.Fatal("empty transcript accepted")
	}

	// Owner-scoped delete
	if err := s.Souvenirs().Delete(ctx, "someone-else", sv.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-owner delete: want ErrNotFound, got %v", err)
	}
	if err := s.Souvenirs().Delete(ctx, ownerID, sv.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.Souvenirs().GetByID(ctx, sv.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("deleted souvenir still readable: %v", err)
	}
}
