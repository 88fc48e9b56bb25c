package model

import (
	"errors"
	"testing"
)

func tagged(title, tag string) *Note {
	n := NewNote(title, title+" body", "<p>"+title+"</p>")
	n.SetTag(tag)
	return n
}

// checkFolderIndex asserts the derived folder index mirrors the note list.
func checkFolderIndex(t *testing.T, a *Ambito) {
	t.Helper()
	inFolders := 0
	for _, f := range a.Folders() {
		for _, n := range f.Notes() {
			if n.Tag() != f.Name {
				t.Fatalf("note %s in folder %q carries tag %q", n.ID, f.Name, n.Tag())
			}
			inFolders++
		}
	}
	if inFolders > a.Len() {
		t.Fatalf("folder sum %d exceeds note count %d", inFolders, a.Len())
	}
	for _, n := range a.Notes() {
		if n.AmbitoID != a.ID {
			t.Fatalf("note %s has ambito %q, want %q", n.ID, n.AmbitoID, a.ID)
		}
		if n.Tag() == "" {
			continue
		}
		hits := 0
		for _, f := range a.Folders() {
			for _, m := range f.Notes() {
				if m == n {
					hits++
				}
			}
		}
		if hits != 1 {
			t.Fatalf("tagged note %s appears in %d folders", n.ID, hits)
		}
	}
}

func TestAmbito_AddNoteCreatesFolderOnce(t *testing.T) {
	a := NewAmbito("Work", 2)
	a.SetID("s1")

	a.AddNote(tagged("a", "F"))
	a.AddNote(tagged("b", "F"))
	a.AddNote(tagged("c", ""))

	if got := len(a.Folders()); got != 1 {
		t.Fatalf("expected 1 folder, got %d", got)
	}
	f, ok := a.Folder("F")
	if !ok || f.Len() != 2 {
		t.Fatalf("folder F missing or wrong size: ok=%v", ok)
	}
	checkFolderIndex(t, a)
}

func TestAmbito_AddNoteDoesNotDeduplicate(t *testing.T) {
	a := NewAmbito("Work", 2)
	n := tagged("a", "F")
	a.AddNote(n)
	a.AddNote(n)
	if a.Len() != 2 {
		t.Fatalf("expected duplicate entries, got %d", a.Len())
	}
}

func TestAmbito_SetIDPropagates(t *testing.T) {
	a := NewAmbito("Work", 2)
	n := tagged("a", "")
	a.AddNote(n)
	if n.AmbitoID != "" {
		t.Fatalf("expected empty ambito id before SetID, got %q", n.AmbitoID)
	}
	a.SetID("s9")
	if n.AmbitoID != "s9" {
		t.Fatalf("SetID did not propagate: %q", n.AmbitoID)
	}
}

func TestAmbito_GetFolderNeverCreates(t *testing.T) {
	a := NewAmbito("Work", 2)
	if _, ok := a.Folder("missing"); ok {
		t.Fatalf("unexpected folder")
	}
	if len(a.Folders()) != 0 {
		t.Fatalf("lookup created a folder")
	}
}

func TestAmbito_RemoveNoteKeepsEmptyFolder(t *testing.T) {
	a := NewAmbito("Work", 2)
	n := tagged("a", "F")
	a.AddNote(n)

	if !a.RemoveNote(n) {
		t.Fatalf("RemoveNote returned false for member")
	}
	if a.RemoveNote(n) {
		t.Fatalf("RemoveNote returned true for non-member")
	}
	f, ok := a.Folder("F")
	if !ok || f.Len() != 0 {
		t.Fatalf("folder should remain and be empty")
	}
	checkFolderIndex(t, a)
}

func TestAmbito_RemoveFolderDropsTaggedNotes(t *testing.T) {
	a := NewAmbito("Work", 2)
	a.SetID("s1")
	a.AddNote(tagged("a", "F"))
	a.AddNote(tagged("b", "G"))
	a.AddNote(tagged("c", "F"))
	a.AddNote(tagged("d", ""))

	removed := a.RemoveFolder("F")
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed notes, got %d", len(removed))
	}
	if a.Len() != 2 {
		t.Fatalf("expected 2 remaining notes, got %d", a.Len())
	}
	if _, ok := a.Folder("F"); ok {
		t.Fatalf("folder F should be gone")
	}
	checkFolderIndex(t, a)
}

func TestUser_MoveAmbitoRenumbers(t *testing.T) {
	u := &User{ID: "u1"}
	for _, name := range []string{"a", "b", "c"} {
		u.AddAmbito(NewAmbito(name, 0))
	}
	u.MoveAmbito(2, 0)
	want := []string{"c", "a", "b"}
	for i, a := range u.Ambitos {
		if a.Name != want[i] || a.Position != i {
			t.Fatalf("index %d: got %s@%d want %s@%d", i, a.Name, a.Position, want[i], i)
		}
	}
	u.RemoveAmbito(0)
	if u.Ambitos[0].Name != "a" || u.Ambitos[0].Position != 0 {
		t.Fatalf("remove did not renumber: %+v", u.Ambitos[0])
	}
}

func TestNote_CloneAndAttachments(t *testing.T) {
	n := tagged("a", "F")
	n.SetMedia(MediaImages, "img1")
	n.HaveAudios = true // flag without an ID

	c := n.Clone()
	if c.ID == n.ID || c.Tag() != "F" || c.Title != n.Title {
		t.Fatalf("bad clone: %+v", c)
	}
	if c.ImagesID != nil || !c.HaveImages {
		t.Fatalf("clone must keep flags but drop media ids: %+v", c)
	}

	att := n.Attachments()
	if len(att) != 2 || att[0].Kind != MediaImages || att[0].CollectionID != "img1" || att[1].CollectionID != "" {
		t.Fatalf("unexpected attachments: %+v", att)
	}
}

func TestErrors_UnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{NewNotFoundError("ambito", "x"), ErrNotFound},
		{NewValidationError("name", "empty"), ErrValidation},
		{NewPreconditionError("ambito", "last"), ErrPrecondition},
		{NewInvalidReferenceError("note"), ErrInvalidReference},
		{NewInconsistencyError("ambitos", "user mismatch"), ErrInconsistency},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.want) {
			t.Fatalf("%v does not unwrap to %v", c.err, c.want)
		}
	}
	if !IsPreconditionError(NewPreconditionError("a", "b")) || IsNotFoundError(NewValidationError("a", "b")) {
		t.Fatalf("Is helpers misclassify")
	}
}
