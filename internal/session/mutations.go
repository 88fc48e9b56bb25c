package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/PIS-2020-2021/PIS/internal/events"
	"github.com/PIS-2020-2021/PIS/internal/model"
)

// NoteContent carries the editable fields of a note.
type NoteContent struct {
	Title         string
	TextPlain     string
	TextHTML      string
	HaveImages    bool
	HaveDocuments bool
	HaveAudios    bool
	ImagesID      string
	DocumentsID   string
	AudiosID      string
}

func (c NoteContent) apply(n *model.Note) {
	n.Title = c.Title
	n.TextPlain = c.TextPlain
	n.TextHTML = c.TextHTML
	n.HaveImages = c.HaveImages
	n.HaveDocuments = c.HaveDocuments
	n.HaveAudios = c.HaveAudios
	n.ImagesID = model.StrPtr(c.ImagesID)
	n.DocumentsID = model.StrPtr(c.DocumentsID)
	n.AudiosID = model.StrPtr(c.AudiosID)
}

func validateAmbito(name string, color int) error {
	switch {
	case name == "":
		return model.NewValidationError("name", "ambito name is required")
	case len([]rune(name)) >= model.MaxAmbitoNameLen:
		return model.NewValidationError("name", fmt.Sprintf("ambito name must be shorter than %d characters", model.MaxAmbitoNameLen))
	case color < 0 || color >= len(model.Colors):
		return model.NewValidationError("color", fmt.Sprintf("unknown color %d", color))
	}
	return nil
}

// AddAmbito appends a new Ambito to the current user. Names are unique per
// user (case-sensitive).
func (s *Session) AddAmbito(name string, color int) (*model.Ambito, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, s.fail(model.NewInvalidReferenceError("user"), "ambito", name, "failed to add ambito")
	}
	if err := validateAmbito(name, color); err != nil {
		return nil, s.fail(err, "ambito", name, "failed to add ambito")
	}
	if s.user.AmbitoByName(name) != nil {
		return nil, s.fail(model.NewPreconditionError("name", "ambito "+name+" already exists"), "ambito", name, "failed to add ambito")
	}

	a := model.NewAmbito(name, color)
	a.SetID(uuid.NewString())
	s.user.AddAmbito(a)
	s.bus.NotifyChanged(events.KindUser, s.user.ID)
	s.persist.SaveAmbito(a)
	s.notify("Ambito %s correctly created.", name)
	return a, nil
}

// EditAmbito renames and recolours an Ambito of the current user.
func (s *Session) EditAmbito(id, name string, color int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "ambito", id, "failed to edit ambito")
	}
	if err := validateAmbito(name, color); err != nil {
		return s.fail(err, "ambito", id, "failed to edit ambito")
	}
	_, a := s.user.AmbitoByID(id)
	if a == nil {
		return s.fail(model.NewNotFoundError("ambito", id), "ambito", id, "failed to edit ambito")
	}
	if other := s.user.AmbitoByName(name); other != nil && other != a {
		return s.fail(model.NewPreconditionError("name", "ambito "+name+" already exists"), "ambito", id, "failed to edit ambito")
	}

	a.Name = name
	a.Color = color
	if s.ambito == a {
		s.viewUpdated = false
		s.bus.NotifyChanged(events.KindAmbito, a.ID)
	}
	s.bus.NotifyChanged(events.KindUser, s.user.ID)
	s.persist.SaveAmbito(a)
	s.notify("Ambito %s correctly edited.", name)
	return nil
}

// DeleteAmbito removes an Ambito and its notes. A user always keeps at least
// one Ambito; when the selected one is removed the first remaining is selected.
func (s *Session) DeleteAmbito(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "ambito", id, "failed to delete ambito")
	}
	if len(s.user.Ambitos) <= 1 {
		return s.fail(model.NewPreconditionError("ambito", "cannot delete the user's last ambito"), "ambito", id, "failed to delete ambito")
	}
	i, a := s.user.AmbitoByID(id)
	if a == nil {
		return s.fail(model.NewNotFoundError("ambito", id), "ambito", id, "failed to delete ambito")
	}

	s.user.RemoveAmbito(i)
	s.bus.NotifyChanged(events.KindUser, s.user.ID)
	s.persist.DeleteAmbito(s.user.ID, id)
	for _, rest := range s.user.Ambitos[i:] {
		s.persist.SaveAmbito(rest)
	}
	for _, n := range a.Notes() {
		s.deleteMedia(n)
	}
	s.notify("Ambito %s correctly deleted.", a.Name)

	if s.ambito == a {
		return s.selectAmbito(s.user.Ambitos[0].Name)
	}
	return nil
}

// ReorderAmbito moves an Ambito to index and persists every position.
func (s *Session) ReorderAmbito(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "ambito", id, "failed to reorder ambito")
	}
	i, a := s.user.AmbitoByID(id)
	if a == nil {
		return s.fail(model.NewNotFoundError("ambito", id), "ambito", id, "failed to reorder ambito")
	}
	if index < 0 || index >= len(s.user.Ambitos) {
		return s.fail(model.NewValidationError("index", fmt.Sprintf("position %d out of range", index)), "ambito", id, "failed to reorder ambito")
	}
	s.user.MoveAmbito(i, index)
	s.bus.NotifyChanged(events.KindUser, s.user.ID)
	s.saveAmbitoPositions()
	return nil
}

// SaveAmbitoPositions re-persists every Ambito with its current position.
func (s *Session) SaveAmbitoPositions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "ambito", "", "failed to save positions")
	}
	s.saveAmbitoPositions()
	return nil
}

func (s *Session) saveAmbitoPositions() {
	for _, a := range s.user.Ambitos {
		s.persist.SaveAmbito(a)
	}
}

// EditUser updates the profile of the current user. An empty password keeps
// the stored hash.
func (s *Session) EditUser(name, lastName, mail, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.fail(model.NewInvalidReferenceError("user"), "user", mail, "failed to edit user")
	}
	if mail == "" {
		return s.fail(model.NewValidationError("mail", "mail is required"), "user", s.user.ID, "failed to edit user")
	}
	hash := s.user.Password
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
		if err != nil {
			return s.fail(model.NewValidationError("password", err.Error()), "user", s.user.ID, "failed to edit user")
		}
		hash = string(b)
	}
	s.user.Name = name
	s.user.LastName = lastName
	s.user.Mail = mail
	s.user.Password = hash
	s.bus.NotifyChanged(events.KindUser, s.user.ID)
	s.persist.SaveUser(s.user)
	s.notify("User %s correctly edited.", mail)
	return nil
}

// AddFolder creates an empty folder in the current Ambito.
func (s *Session) AddFolder(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "folder", name, "failed to add folder")
	}
	if name == "" {
		return s.fail(model.NewValidationError("name", "folder name is required"), "folder", name, "failed to add folder")
	}
	if _, ok := s.ambito.Folder(name); ok {
		return s.fail(model.NewPreconditionError("name", "folder "+name+" already exists"), "folder", name, "failed to add folder")
	}
	s.ambito.AddFolder(name)
	s.bus.NotifyChanged(events.KindAmbito, s.ambito.ID)
	s.notify("Folder %s correctly created.", name)
	return nil
}

// DeleteFolder removes a folder and every note it holds from the current Ambito.
func (s *Session) DeleteFolder(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "folder", name, "failed to delete folder")
	}
	if _, ok := s.ambito.Folder(name); !ok {
		return s.fail(model.NewNotFoundError("folder", name), "folder", name, "failed to delete folder")
	}

	removed := s.ambito.RemoveFolder(name)
	s.bus.NotifyChanged(events.KindAmbito, s.ambito.ID)
	if s.folder != nil && s.folder.Name == name {
		s.folder = nil
		s.bus.NotifyChanged(events.KindFolder, "")
	}
	for _, n := range removed {
		if s.note == n {
			s.note = nil
			s.bus.NotifyChanged(events.KindNote, "")
		}
		s.deleteMedia(n)
	}
	s.persist.DeleteFolder(s.ambito.ID, name)
	s.notify("Folder %s correctly deleted.", name)
	return nil
}

// AddNote creates a note in the current Ambito, filed under the selected
// folder when there is one.
func (s *Session) AddNote(c NoteContent) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return nil, s.fail(model.NewInvalidReferenceError("ambito"), "note", c.Title, "failed to add note")
	}
	n := model.NewNote(c.Title, c.TextPlain, c.TextHTML)
	n.LastUpdate = s.now()
	c.apply(n)
	if s.folder != nil {
		n.SetTag(s.folder.Name)
	}
	s.ambito.AddNote(n)
	s.refreshNotes()
	s.persist.SaveNote(n)
	s.notify("Note %s correctly created.", c.Title)
	return n, nil
}

// EditNote overwrites the selected note and refreshes its LastUpdate.
func (s *Session) EditNote(c NoteContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.note == nil {
		return s.fail(model.NewInvalidReferenceError("note"), "note", c.Title, "failed to edit note")
	}
	c.apply(s.note)
	s.note.LastUpdate = s.now()
	s.bus.NotifyChanged(events.KindNote, s.note.ID)
	s.refreshNotes()
	s.persist.SaveNote(s.note)
	s.notify("Note %s correctly edited.", c.Title)
	return nil
}

// DeleteNote removes a note of the current Ambito and its media collections.
func (s *Session) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "note", id, "failed to delete note")
	}
	n := s.ambito.NoteByID(id)
	if n == nil {
		return s.fail(model.NewNotFoundError("note", id), "note", id, "failed to delete note")
	}
	s.ambito.RemoveNote(n)
	s.refreshNotes()
	if s.note == n {
		s.note = nil
		s.bus.NotifyChanged(events.KindNote, "")
	}
	s.persist.DeleteNote(n.ID)
	s.deleteMedia(n)
	s.notify("Note %s correctly deleted.", n.Title)
	return nil
}

// CopyNote duplicates a note of the current Ambito. Each media collection is
// physically copied first; a copy failure deletes the collections already
// duplicated and aborts before insertion.
func (s *Session) CopyNote(ctx context.Context, id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ambito == nil {
		return nil, s.fail(model.NewInvalidReferenceError("ambito"), "note", id, "failed to copy note")
	}
	n := s.ambito.NoteByID(id)
	if n == nil {
		return nil, s.fail(model.NewNotFoundError("note", id), "note", id, "failed to copy note")
	}

	dup := n.Clone()
	dup.LastUpdate = s.now()
	for _, att := range n.Attachments() {
		if att.CollectionID == "" {
			continue
		}
		if s.media == nil {
			return nil, s.fail(fmt.Errorf("copy %s: no media port configured", att.Kind), "note", id, "failed to copy note")
		}
		newID, err := s.media.Copy(ctx, att.Kind, att.CollectionID)
		if err != nil {
			s.deleteMedia(dup)
			return nil, s.fail(fmt.Errorf("copy %s %s: %w", att.Kind, att.CollectionID, err), "note", id, "failed to copy note")
		}
		dup.SetMedia(att.Kind, newID)
	}

	s.ambito.AddNote(dup)
	s.refreshNotes()
	s.persist.SaveNote(dup)
	s.notify("Note %s correctly duplicated.", n.Title)
	return dup, nil
}

// MoveNote moves a note of the current Ambito into the target Ambito under
// folderTag (empty for none). Nothing changes unless both resolve.
func (s *Session) MoveNote(targetAmbitoID, folderTag, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.ambito == nil {
		return s.fail(model.NewInvalidReferenceError("ambito"), "note", noteID, "failed to move note")
	}
	_, target := s.user.AmbitoByID(targetAmbitoID)
	if target == nil {
		return s.fail(model.NewNotFoundError("ambito", targetAmbitoID), "note", noteID, "failed to move note")
	}
	n := s.ambito.NoteByID(noteID)
	if n == nil {
		return s.fail(model.NewNotFoundError("note", noteID), "note", noteID, "failed to move note")
	}

	s.ambito.RemoveNote(n)
	n.SetTag(folderTag)
	target.AddNote(n)
	s.refreshNotes()
	s.bus.NotifyChanged(events.KindAmbito, target.ID)
	if s.note == n {
		s.note = nil
		s.bus.NotifyChanged(events.KindNote, "")
	}
	s.persist.SaveNote(n)
	s.notify("Note %s correctly moved.", n.Title)
	return nil
}

// refreshNotes re-publishes the note containers of the current selection.
func (s *Session) refreshNotes() {
	s.bus.NotifyChanged(events.KindAmbito, s.ambito.ID)
	name := ""
	if s.folder != nil {
		name = s.folder.Name
	}
	s.bus.NotifyChanged(events.KindFolder, name)
}

func (s *Session) deleteMedia(n *model.Note) {
	if s.media == nil {
		return
	}
	for _, att := range n.Attachments() {
		if att.CollectionID != "" {
			s.media.Delete(att.Kind, att.CollectionID)
		}
	}
}
