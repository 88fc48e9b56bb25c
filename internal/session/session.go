// Package session holds the selection state machine and the mutation API over
// the User -> Ambito -> Folder/Note graph.
//
// A Session is driven by a single caller (one UI session). Its mutex only
// protects the selection holders against the hydration Builder publishing
// the loaded user from another goroutine.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/PIS-2020-2021/PIS/internal/events"
	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Session tracks the selected User, Ambito, Folder and Note.
type Session struct {
	mu sync.Mutex

	user   *model.User
	ambito *model.Ambito
	folder *model.Folder
	note   *model.Note

	status      string
	viewUpdated bool

	bus     *events.Bus
	persist Persister
	media   MediaPort
	log     zerolog.Logger

	now          func() time.Time
	passwordCost int
}

// Option configures a Session during construction in New.
type Option func(*Session)

// WithClock overrides the time source used for LastUpdate.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPasswordCost sets the bcrypt cost used by EditUser.
func WithPasswordCost(cost int) Option {
	return func(s *Session) { s.passwordCost = cost }
}

// New returns a Session with no user loaded. A nil persister discards writes.
func New(bus *events.Bus, persist Persister, media MediaPort, log zerolog.Logger, opts ...Option) *Session {
	if persist == nil {
		persist = nopPersister{}
	}
	s := &Session{
		bus:          bus,
		persist:      persist,
		media:        media,
		log:          log.With().Str("component", "session").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
		passwordCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CurrentUser returns the loaded user or nil.
func (s *Session) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// CurrentAmbito returns the selected Ambito or nil.
func (s *Session) CurrentAmbito() *model.Ambito {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambito
}

// CurrentFolder returns the selected Folder or nil.
func (s *Session) CurrentFolder() *model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

// CurrentNote returns the selected Note or nil.
func (s *Session) CurrentNote() *model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

// Status returns the last user-facing notice.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ViewUpdated reports whether the view has been refreshed since the last
// Ambito switch or theme change.
func (s *Session) ViewUpdated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewUpdated
}

// MarkViewUpdated records that observers re-rendered.
func (s *Session) MarkViewUpdated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewUpdated = true
}

// Events returns the bus observers subscribe to.
func (s *Session) Events() *events.Bus { return s.bus }

// SelectAmbito selects the user's Ambito named name and clears the folder
// selection. On failure the previous selection is kept.
func (s *Session) SelectAmbito(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectAmbito(name)
}

func (s *Session) selectAmbito(name string) error {
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "ambito", name, "failed to select ambito")
	}
	a := s.user.AmbitoByName(name)
	if a == nil {
		return s.fail(model.NewNotFoundError("ambito", name), "ambito", name, "failed to select ambito")
	}
	s.viewUpdated = false
	s.ambito = a
	s.folder = nil
	if s.note != nil && s.note.AmbitoID != a.ID {
		s.note = nil
		s.bus.NotifyChanged(events.KindNote, "")
	}
	s.bus.NotifyChanged(events.KindAmbito, a.ID)
	s.bus.NotifyChanged(events.KindFolder, "")
	s.notify("Ambito %s selected.", name)
	return nil
}

// SelectFolder selects a folder of the current Ambito.
func (s *Session) SelectFolder(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "folder", name, "failed to select folder")
	}
	f, ok := s.ambito.Folder(name)
	if !ok {
		return s.fail(model.NewNotFoundError("folder", name), "folder", name, "failed to select folder")
	}
	s.folder = f
	s.bus.NotifyChanged(events.KindFolder, name)
	s.notify("Folder %s selected.", name)
	return nil
}

// DeselectFolder clears the folder selection.
func (s *Session) DeselectFolder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folder == nil {
		return s.fail(model.NewInvalidReferenceError("folder"), "folder", "", "failed to deselect folder")
	}
	name := s.folder.Name
	s.folder = nil
	s.bus.NotifyChanged(events.KindFolder, "")
	s.notify("Folder %s deselected.", name)
	return nil
}

// SelectNote selects a note by ID among all notes of the current Ambito,
// regardless of the folder selection.
func (s *Session) SelectNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "note", id, "failed to select note")
	}
	n := s.ambito.NoteByID(id)
	if n == nil {
		return s.fail(model.NewNotFoundError("note", id), "note", id, "failed to select note")
	}
	s.note = n
	s.bus.NotifyChanged(events.KindNote, id)
	s.notify("Note %s selected.", n.Title)
	return nil
}

// hydrated installs the fully loaded user and selects its first Ambito.
func (s *Session) hydrated(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.ambito, s.folder, s.note = nil, nil, nil
	s.bus.NotifyChanged(events.KindUser, u.ID)
	s.bus.NotifyChanged(events.KindHydrated, u.ID)
	s.notify("User %s correctly logged.", u.Mail)
	if len(u.Ambitos) > 0 {
		_ = s.selectAmbito(u.Ambitos[0].Name)
	}
}

// notify records a user-facing notice and publishes it.
func (s *Session) notify(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.status = msg
	s.log.Info().Msg(msg)
	s.bus.Publish(events.Event{Kind: events.KindStatus, Message: msg})
}

// fail logs a non-fatal failure and returns err unchanged. Precondition and
// validation failures also reach the user as a notice.
func (s *Session) fail(err error, field, value, msg string) error {
	s.log.Warn().Err(err).Str(field, value).Msg(msg)
	if model.IsPreconditionError(err) || model.IsValidationError(err) {
		s.notify("%s: %v", msg, err)
	}
	return err
}
