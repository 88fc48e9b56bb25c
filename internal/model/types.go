package model

import (
	"time"

	"github.com/google/uuid"
)

// Default Ambito created for every user that has none.
const (
	DefaultAmbitoName  = "Personal"
	DefaultAmbitoColor = 1
)

// Colors available to an Ambito, indexed by Ambito.Color.
var Colors = []string{"Red", "Purple", "Indigo", "Blue", "Teal", "Green", "Yellow", "Orange", "Brown"}

// MaxAmbitoNameLen is the exclusive upper bound for Ambito names.
const MaxAmbitoNameLen = 14

// User is the root of the hierarchy and owns an ordered list of Ambitos.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Mail     string `json:"mail" yaml:"mail"`
	Name     string `json:"name" yaml:"name"`
	LastName string `json:"lastName" yaml:"lastName"`
	// Password holds a bcrypt hash, never plaintext.
	Password string    `json:"-" yaml:"-"`
	Ambitos  []*Ambito `json:"ambitos" yaml:"ambitos"`
}

// AddAmbito appends a to the user's Ambitos and stamps ownership and position.
func (u *User) AddAmbito(a *Ambito) {
	a.UserID = u.ID
	a.Position = len(u.Ambitos)
	u.Ambitos = append(u.Ambitos, a)
}

// AmbitoByID returns the index and Ambito with the given ID.
func (u *User) AmbitoByID(id string) (int, *Ambito) {
	for i, a := range u.Ambitos {
		if a.ID == id {
			return i, a
		}
	}
	return -1, nil
}

// AmbitoByName returns the Ambito with the given name (case-sensitive).
func (u *User) AmbitoByName(name string) *Ambito {
	for _, a := range u.Ambitos {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// RemoveAmbito drops the Ambito at index i and renumbers positions.
func (u *User) RemoveAmbito(i int) {
	u.Ambitos = append(u.Ambitos[:i], u.Ambitos[i+1:]...)
	u.renumber()
}

// MoveAmbito moves the Ambito at index from to index to.
func (u *User) MoveAmbito(from, to int) {
	a := u.Ambitos[from]
	u.Ambitos = append(u.Ambitos[:from], u.Ambitos[from+1:]...)
	u.Ambitos = append(u.Ambitos[:to], append([]*Ambito{a}, u.Ambitos[to:]...)...)
	u.renumber()
}

func (u *User) renumber() {
	for i, a := range u.Ambitos {
		a.Position = i
	}
}

// Folder is a named view over the notes of one Ambito that carry its name as tag.
type Folder struct {
	Name  string
	notes []*Note
}

// Notes returns a copy of the folder's note list.
func (f *Folder) Notes() []*Note {
	return append([]*Note(nil), f.notes...)
}

// Len reports how many notes the folder holds.
func (f *Folder) Len() int { return len(f.notes) }

// Note is a content unit that belongs to exactly one Ambito.
type Note struct {
	ID            string    `json:"id" yaml:"id"`
	AmbitoID      string    `json:"ambitoId" yaml:"ambitoId"`
	FolderTag     *string   `json:"folderTag,omitempty" yaml:"folderTag,omitempty"`
	Title         string    `json:"title" yaml:"title"`
	TextPlain     string    `json:"textPlain" yaml:"textPlain"`
	TextHTML      string    `json:"textHtml" yaml:"textHtml"`
	LastUpdate    time.Time `json:"lastUpdate" yaml:"lastUpdate"`
	HaveImages    bool      `json:"haveImages" yaml:"haveImages"`
	HaveDocuments bool      `json:"haveDocuments" yaml:"haveDocuments"`
	HaveAudios    bool      `json:"haveAudios" yaml:"haveAudios"`
	ImagesID      *string   `json:"imagesId,omitempty" yaml:"imagesId,omitempty"`
	DocumentsID   *string   `json:"documentsId,omitempty" yaml:"documentsId,omitempty"`
	AudiosID      *string   `json:"audiosId,omitempty" yaml:"audiosId,omitempty"`
}

// NewNote returns a note with a fresh ID and LastUpdate set to now.
func NewNote(title, plain, html string) *Note {
	return &Note{
		ID:         uuid.NewString(),
		Title:      title,
		TextPlain:  plain,
		TextHTML:   html,
		LastUpdate: time.Now().UTC(),
	}
}

// Tag returns the folder tag or "" when the note is untagged.
func (n *Note) Tag() string {
	if n.FolderTag == nil {
		return ""
	}
	return *n.FolderTag
}

// SetTag sets the folder tag; an empty name clears it.
func (n *Note) SetTag(name string) {
	if name == "" {
		n.FolderTag = nil
		return
	}
	n.FolderTag = &name
}

// Clone duplicates the textual fields, tag and media flags under a new ID.
// Media collection IDs are not copied; the caller assigns fresh ones.
func (n *Note) Clone() *Note {
	c := NewNote(n.Title, n.TextPlain, n.TextHTML)
	c.SetTag(n.Tag())
	c.HaveImages = n.HaveImages
	c.HaveDocuments = n.HaveDocuments
	c.HaveAudios = n.HaveAudios
	return c
}

// Attachment references one media collection of a note.
type Attachment struct {
	Kind         MediaKind
	CollectionID string
}

// Attachments lists the media collections whose flag is set.
// A set flag with a nil ID yields an empty CollectionID.
func (n *Note) Attachments() []Attachment {
	var out []Attachment
	for _, k := range MediaKinds {
		if !n.Has(k) {
			continue
		}
		id := ""
		if p := n.mediaRef(k); *p != nil {
			id = **p
		}
		out = append(out, Attachment{Kind: k, CollectionID: id})
	}
	return out
}

// Has reports the have-flag for kind.
func (n *Note) Has(k MediaKind) bool {
	switch k {
	case MediaImages:
		return n.HaveImages
	case MediaDocuments:
		return n.HaveDocuments
	case MediaAudios:
		return n.HaveAudios
	}
	return false
}

// SetMedia sets the have-flag and collection ID for kind.
func (n *Note) SetMedia(k MediaKind, id string) {
	p := n.mediaRef(k)
	if p == nil {
		return
	}
	switch k {
	case MediaImages:
		n.HaveImages = id != ""
	case MediaDocuments:
		n.HaveDocuments = id != ""
	case MediaAudios:
		n.HaveAudios = id != ""
	}
	if id == "" {
		*p = nil
		return
	}
	*p = &id
}

func (n *Note) mediaRef(k MediaKind) **string {
	switch k {
	case MediaImages:
		return &n.ImagesID
	case MediaDocuments:
		return &n.DocumentsID
	case MediaAudios:
		return &n.AudiosID
	}
	return nil
}

// MediaKind names one of the three media collection families.
type MediaKind string

const (
	MediaImages    MediaKind = "images"
	MediaDocuments MediaKind = "documents"
	MediaAudios    MediaKind = "audios"
)

// MediaKinds lists every kind in a stable order.
var MediaKinds = []MediaKind{MediaImages, MediaDocuments, MediaAudios}

// MediaItem is one file inside a media collection.
type MediaItem struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
