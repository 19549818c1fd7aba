package store

import (
	"context"

	"github.com/echomap/echomap/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Souvenirs() Souvenirs
	Profiles() Profiles
}

// Souvenirs is the souvenirs table. Records are insert-only from the
// creation workflow; Delete exists for owner-restricted removal only,
// mirroring the row-level policies of the hosted store.
type Souvenirs interface {
	Create(ctx context.Context, s *model.Souvenir) (*model.Souvenir, error)
	GetByID(ctx context.Context, id string) (*model.Souvenir, error)
	List(ctx context.Context) ([]*model.Souvenir, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Souvenir, error)
	// Delete removes a souvenir only when ownerID matches the stored owner;
	// a mismatch or missing row returns model.ErrNotFound.
	Delete(ctx context.Context, ownerID, id string) error
}

type Profiles interface {
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, id string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	UpdateUsername(ctx context.Context, id, username string) (*model.Profile, error)
}
