package store

import (
	"context"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Store exposes the persistence operations the session relies on.
// Implementations live under internal/store/<driver>/ (memstore, sqlite, postgres).
//
// Saves are upserts keyed by the entity ID; callers mint IDs. Get and the
// List calls never return graph links: notes are not attached to Ambitos and
// Ambitos are not attached to users.
type Store interface {
	Users() Users
	Ambitos() Ambitos
	Notes() Notes
}

type Users interface {
	Save(ctx context.Context, u *model.User) error
	// Get returns a model.NotFoundError when no user has the ID.
	Get(ctx context.Context, userID string) (*model.User, error)
}

type Ambitos interface {
	Save(ctx context.Context, a *model.Ambito) error
	// List returns the user's Ambitos ordered by Position.
	List(ctx context.Context, userID string) ([]*model.Ambito, error)
	// Delete removes the Ambito and every note it holds.
	Delete(ctx context.Context, userID, ambitoID string) error
}

type Notes interface {
	Save(ctx context.Context, n *model.Note) error
	List(ctx context.Context, ambitoID string) ([]*model.Note, error)
	Delete(ctx context.Context, noteID string) error
	// DeleteFolder removes every note of the Ambito tagged with name.
	DeleteFolder(ctx context.Context, ambitoID, name string) error
}

// HealthPinger is implemented by stores that can check their backend.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
