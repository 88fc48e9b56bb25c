package session

import (
	"context"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Persister receives fire-and-forget persistence requests. Calls must not
// block on the remote store; failures are the implementation's to surface.
type Persister interface {
	SaveUser(u *model.User)
	SaveAmbito(a *model.Ambito)
	SaveNote(n *model.Note)
	DeleteAmbito(userID, ambitoID string)
	DeleteNote(noteID string)
	DeleteFolder(ambitoID, name string)
}

// MediaPort manages the media collections referenced by notes.
// Copy is synchronous because the duplicate needs the new ID before insertion;
// Fetch and Delete are fire-and-forget.
type MediaPort interface {
	Copy(ctx context.Context, kind model.MediaKind, collectionID string) (string, error)
	Fetch(kind model.MediaKind, collectionID string)
	Delete(kind model.MediaKind, collectionID string)
}

// Loader reads the persisted graph of the logged-in user.
type Loader interface {
	FetchUser(ctx context.Context) (*model.User, error)
	FetchAmbitos(ctx context.Context, userID string) ([]*model.Ambito, error)
	FetchNotes(ctx context.Context, ambitoID string) ([]*model.Note, error)
}

type nopPersister struct{}

func (nopPersister) SaveUser(*model.User) {}
func (nopPersister) SaveAmbito(*model.Ambito) {}
func (nopPersister) SaveNote(*model.Note) {}
func (nopPersister) DeleteAmbito(string, string) {}
func (nopPersister) DeleteNote(string) {}
func (nopPersister) DeleteFolder(string, string) {}
