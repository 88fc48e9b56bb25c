// Package memstore is an in-memory store.Store used by tests and dry runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// Store keeps copies of every saved entity; callers never share memory with it.
type Store struct {
	mu      sync.RWMutex
	users   map[string]model.User
	ambitos map[string]model.Ambito
	notes   map[string]model.Note
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]model.User),
		ambitos: make(map[string]model.Ambito),
		notes:   make(map[string]model.Note),
	}
}

func (s *Store) Users() store.Users     { return users{s} }
func (s *Store) Ambitos() store.Ambitos { return ambitos{s} }
func (s *Store) Notes() store.Notes     { return notes{s} }

// HealthPing always succeeds.
func (s *Store) HealthPing(context.Context) error { return nil }

type users struct{ s *Store }

func (r users) Save(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	cp.Ambitos = nil
	r.s.users[u.ID] = cp
	return nil
}

func (r users) Get(_ context.Context, userID string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, model.NewNotFoundError("user", userID)
	}
	return &u, nil
}

type ambitos struct{ s *Store }

func (r ambitos) Save(_ context.Context, a *model.Ambito) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ambitos[a.ID] = model.Ambito{ID: a.ID, UserID: a.UserID, Name: a.Name, Color: a.Color, Position: a.Position}
	return nil
}

func (r ambitos) List(_ context.Context, userID string) ([]*model.Ambito, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Ambito
	for _, a := range r.s.ambitos {
		if a.UserID != userID {
			continue
		}
		cp := model.NewAmbito(a.Name, a.Color)
		cp.ID, cp.UserID, cp.Position = a.ID, a.UserID, a.Position
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r ambitos) Delete(_ context.Context, userID, ambitoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.ambitos[ambitoID]; ok && a.UserID == userID {
		delete(r.s.ambitos, ambitoID)
		for id, n := range r.s.notes {
			if n.AmbitoID == ambitoID {
				delete(r.s.notes, id)
			}
		}
	}
	return nil
}

type notes struct{ s *Store }

func (r notes) Save(_ context.Context, n *model.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notes[n.ID] = copyNote(n)
	return nil
}

func (r notes) List(_ context.Context, ambitoID string) ([]*model.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Note
	for _, n := range r.s.notes {
		if n.AmbitoID == ambitoID {
			cp := copyNote(&n)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdate.Equal(out[j].LastUpdate) {
			return out[i].LastUpdate.Before(out[j].LastUpdate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r notes) Delete(_ context.Context, noteID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notes, noteID)
	return nil
}

func (r notes) DeleteFolder(_ context.Context, ambitoID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, n := range r.s.notes {
		if n.AmbitoID == ambitoID && n.Tag() == name {
			delete(r.s.notes, id)
		}
	}
	return nil
}

func copyNote(n *model.Note) model.Note {
	cp := *n
	cp.FolderTag = model.StrPtr(n.Tag())
	cp.ImagesID = clonePtr(n.ImagesID)
	cp.DocumentsID = clonePtr(n.DocumentsID)
	cp.AudiosID = clonePtr(n.AudiosID)
	return cp
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
