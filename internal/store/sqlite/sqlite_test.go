package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echomap/echomap/internal/model"
)

func openTestStore(t *testing.T) *liteStore {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &liteStore{db: db}
}

func createProfile(t *testing.T, s *liteStore, id, username string) *model.Profile {
	t.Helper()
	p, err := s.Profiles().Create(context.Background(), &model.Profile{
		ID: id, Username: username, Email: username + "@example.com",
	})
	require.NoError(t, err)
	return p
}

func TestSouvenirs_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")

	in := &model.Souvenir{
		OwnerID:    "u1",
		Title:      "Sunset at Battery Park",
		AudioURL:   "https://blob/audio/1.webm",
		ImageURL:   "https://blob/images/1.png",
		Transcript: "we watched the ferries go by",
		Latitude:   40.7128,
		Longitude:  -74.0060,
	}
	out, err := s.Souvenirs().Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.False(t, out.CreatedAt.IsZero())

	got, err := s.Souvenirs().GetByID(ctx, out.ID)
	require.NoError(t, err)
	require.Equal(t, in.Title, got.Title)
	require.Equal(t, in.Latitude, got.Latitude)
	require.Equal(t, in.Longitude, got.Longitude)
	require.Nil(t, got.TxID)
}

func TestSouvenirs_EmptyRequiredFieldsRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")

	base := model.Souvenir{
		OwnerID: "u1", Title: "t", AudioURL: "a", ImageURL: "i", Transcript: "x",
		Latitude: 1, Longitude: 2,
	}
	for _, mutate := range []func(*model.Souvenir){
		func(m *model.Souvenir) { m.Title = "" },
		func(m *model.Souvenir) { m.AudioURL = "" },
		func(m *model.Souvenir) { m.ImageURL = "" },
		func(m *model.Souvenir) { m.Transcript = "" },
	} {
		m := base
		mutate(&m)
		_, err := s.Souvenirs().Create(ctx, &m)
		require.Error(t, err)
	}
}

func TestSouvenirs_CoordinateRangeEnforced(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")

	m := model.Souvenir{
		OwnerID: "u1", Title: "t", AudioURL: "a", ImageURL: "i", Transcript: "x",
		Latitude: 91, Longitude: 0,
	}
	_, err := s.Souvenirs().Create(ctx, &m)
	require.Error(t, err)

	m.Latitude, m.Longitude = 0, -181
	_, err = s.Souvenirs().Create(ctx, &m)
	require.Error(t, err)
}

func TestSouvenirs_DeleteIsOwnerScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")
	createProfile(t, s, "u2", "bob")

	out, err := s.Souvenirs().Create(ctx, &model.Souvenir{
		OwnerID: "u1", Title: "t", AudioURL: "a", ImageURL: "i", Transcript: "x",
		Latitude: 1, Longitude: 2,
	})
	require.NoError(t, err)

	err = s.Souvenirs().Delete(ctx, "u2", out.ID)
	require.True(t, errors.Is(err, model.ErrNotFound))

	require.NoError(t, s.Souvenirs().Delete(ctx, "u1", out.ID))

	_, err = s.Souvenirs().GetByID(ctx, out.ID)
	require.True(t, errors.Is(err, model.ErrNotFound))
}

func TestProfiles_UsernameUnique(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")

	_, err := s.Profiles().Create(ctx, &model.Profile{ID: "u2", Username: "alice", Email: "a2@example.com"})
	require.True(t, errors.Is(err, model.ErrConflict))
}

func TestProfiles_UpdateUsername(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")
	createProfile(t, s, "u2", "bob")

	p, err := s.Profiles().UpdateUsername(ctx, "u1", "alice_two")
	require.NoError(t, err)
	require.Equal(t, "alice_two", p.Username)

	_, err = s.Profiles().UpdateUsername(ctx, "u2", "alice_two")
	require.True(t, errors.Is(err, model.ErrConflict))

	_, err = s.Profiles().UpdateUsername(ctx, "missing", "whoever")
	require.True(t, errors.Is(err, model.ErrNotFound))
}

func TestSouvenirs_ListOrderedNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createProfile(t, s, "u1", "alice")

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.Souvenirs().Create(ctx, &model.Souvenir{
			OwnerID: "u1", Title: title, AudioURL: "a", ImageURL: "i", Transcript: "x",
			Latitude: 1, Longitude: 2,
		})
		require.NoError(t, err)
	}
	all, err := s.Souvenirs().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
