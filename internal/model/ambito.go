package model

import "sort"

// Ambito is a named, coloured scope owned by a User. It is the single source
// of truth for note and folder membership: the folder index is derived from
// note tags and only changes through the methods below.
type Ambito struct {
	ID       string `json:"id" yaml:"id"`
	UserID   string `json:"userId" yaml:"userId"`
	Name     string `json:"name" yaml:"name"`
	Color    int    `json:"color" yaml:"color"`
	Position int    `json:"position" yaml:"position"`

	notes   []*Note
	folders map[string]*Folder
}

// NewAmbito returns an empty Ambito.
func NewAmbito(name string, color int) *Ambito {
	return &Ambito{Name: name, Color: color, folders: make(map[string]*Folder)}
}

// SetID assigns the Ambito ID and propagates it to every contained note.
func (a *Ambito) SetID(id string) {
	a.ID = id
	for _, n := range a.notes {
		n.AmbitoID = id
	}
}

// Notes returns a copy of the note list in insertion order.
func (a *Ambito) Notes() []*Note {
	return append([]*Note(nil), a.notes...)
}

// Len reports the number of notes.
func (a *Ambito) Len() int { return len(a.notes) }

// NoteByID finds a note among all notes of the Ambito.
func (a *Ambito) NoteByID(id string) *Note {
	for _, n := range a.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Folder returns the named folder; it never creates one.
func (a *Ambito) Folder(name string) (*Folder, bool) {
	f, ok := a.folders[name]
	return f, ok
}

// Folders returns the folders sorted by name.
func (a *Ambito) Folders() []*Folder {
	out := make([]*Folder, 0, len(a.folders))
	for _, f := range a.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddFolder creates an empty folder unless one with that name exists.
func (a *Ambito) AddFolder(name string) *Folder {
	if a.folders == nil {
		a.folders = make(map[string]*Folder)
	}
	if f, ok := a.folders[name]; ok {
		return f
	}
	f := &Folder{Name: name}
	a.folders[name] = f
	return f
}

// AddNote appends n, stamps its AmbitoID and files it under its tag,
// creating the folder when needed. Adding the same note twice yields two entries.
func (a *Ambito) AddNote(n *Note) {
	a.notes = append(a.notes, n)
	n.AmbitoID = a.ID
	if tag := n.Tag(); tag != "" {
		f := a.AddFolder(tag)
		f.notes = append(f.notes, n)
	}
}

// RemoveNote drops n from the note list and from its folder. The folder is
// kept even when it becomes empty. It reports whether n was a member.
func (a *Ambito) RemoveNote(n *Note) bool {
	i := indexOf(a.notes, n)
	if i < 0 {
		return false
	}
	a.notes = append(a.notes[:i], a.notes[i+1:]...)
	if f, ok := a.folders[n.Tag()]; ok {
		if j := indexOf(f.notes, n); j >= 0 {
			f.notes = append(f.notes[:j], f.notes[j+1:]...)
		}
	}
	return true
}

// RemoveFolder deletes the folder entry and every note tagged with name.
// It returns the removed notes.
func (a *Ambito) RemoveFolder(name string) []*Note {
	var removed []*Note
	kept := a.notes[:0]
	for _, n := range a.notes {
		if n.Tag() == name {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(a.notes); i++ {
		a.notes[i] = nil
	}
	a.notes = kept
	delete(a.folders, name)
	return removed
}

func indexOf(list []*Note, n *Note) int {
	for i, x := range list {
		if x == n {
			return i
		}
	}
	return -1
}
