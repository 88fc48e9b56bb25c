package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/events"
	"github.com/PIS-2020-2021/PIS/internal/model"
)

type call struct {
	op string
	id string
}

type fakePersister struct {
	mu    sync.Mutex
	calls []call
}

func (p *fakePersister) record(op, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{op, id})
}

func (p *fakePersister) SaveUser(u *model.User)     { p.record("SaveUser", u.ID) }
func (p *fakePersister) SaveAmbito(a *model.Ambito) { p.record("SaveAmbito", a.ID) }
func (p *fakePersister) SaveNote(n *model.Note)     { p.record("SaveNote", n.ID) }
func (p *fakePersister) DeleteAmbito(_, id string)  { p.record("DeleteAmbito", id) }
func (p *fakePersister) DeleteNote(id string)       { p.record("DeleteNote", id) }
func (p *fakePersister) DeleteFolder(_, name string) {
	p.record("DeleteFolder", name)
}

func (p *fakePersister) ops(op string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, c := range p.calls {
		if c.op == op {
			out = append(out, c.id)
		}
	}
	return out
}

type fakeMedia struct {
	mu      sync.Mutex
	copied  []string
	fetched []string
	deleted []string
	failOn  string
	seq     int
}

func (m *fakeMedia) Copy(_ context.Context, kind model.MediaKind, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = append(m.copied, id)
	if id == m.failOn {
		return "", errors.New("storage unavailable")
	}
	m.seq++
	return fmt.Sprintf("%s-copy-%d", id, m.seq), nil
}

func (m *fakeMedia) Fetch(_ model.MediaKind, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, id)
}

func (m *fakeMedia) Delete(_ model.MediaKind, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
}

// staticLoader serves a fixed graph. A nil user makes every fetch fail, which
// leaves the test free to drive the Builder callbacks by hand.
type staticLoader struct {
	user    *model.User
	ambitos []*model.Ambito
	notes   map[string][]*model.Note
}

var errManual = errors.New("manual mode")

func (l *staticLoader) FetchUser(context.Context) (*model.User, error) {
	if l.user == nil {
		return nil, errManual
	}
	return l.user, nil
}

func (l *staticLoader) FetchAmbitos(context.Context, string) ([]*model.Ambito, error) {
	if l.user == nil {
		return nil, errManual
	}
	return l.ambitos, nil
}

func (l *staticLoader) FetchNotes(_ context.Context, ambitoID string) ([]*model.Note, error) {
	if l.user == nil {
		return nil, errManual
	}
	return l.notes[ambitoID], nil
}

func newTestSession() (*Session, *fakePersister, *fakeMedia) {
	p := &fakePersister{}
	m := &fakeMedia{}
	s := New(events.NewBus(256), p, m, zerolog.Nop())
	return s, p, m
}

// loaded builds a session already hydrated with user "u1" owning the given
// Ambito names, each with an ID equal to its name.
func loaded(names ...string) (*Session, *fakePersister, *fakeMedia) {
	s, p, m := newTestSession()
	u := &model.User{ID: "u1", Mail: "ana@example.com"}
	for _, n := range names {
		a := model.NewAmbito(n, 0)
		a.SetID(n)
		u.AddAmbito(a)
	}
	s.hydrated(u)
	return s, p, m
}
