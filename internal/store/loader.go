package store

import (
	"context"
	"fmt"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Loader reads the graph of one user from a Store, one level at a time.
type Loader struct {
	st     Store
	userID string
}

// NewLoader returns a Loader for userID.
func NewLoader(st Store, userID string) *Loader {
	return &Loader{st: st, userID: userID}
}

func (l *Loader) FetchUser(ctx context.Context) (*model.User, error) {
	u, err := l.st.Users().Get(ctx, l.userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", l.userID, err)
	}
	return u, nil
}

func (l *Loader) FetchAmbitos(ctx context.Context, userID string) ([]*model.Ambito, error) {
	as, err := l.st.Ambitos().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch ambitos of %s: %w", userID, err)
	}
	return as, nil
}

func (l *Loader) FetchNotes(ctx context.Context, ambitoID string) ([]*model.Note, error) {
	ns, err := l.st.Notes().List(ctx, ambitoID)
	if err != nil {
		return nil, fmt.Errorf("fetch notes of %s: %w", ambitoID, err)
	}
	return ns, nil
}
