// Package storetest holds the compliance suite every store.Store driver runs.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// Run exercises a store.Store implementation. makeStore must return a clean,
// isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.NewString()

	// Users
	if _, err := s.Users().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}
	u := &model.User{ID: userID, Mail: userID + "@example.test", Name: "Ana", LastName: "Diaz", Password: "$2a$hash"}
	if err := s.Users().Save(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	u.Name = "Ana Maria"
	if err := s.Users().Save(ctx, u); err != nil {
		t.Fatalf("SaveUser upsert: %v", err)
	}
	got, err := s.Users().Get(ctx, userID)
	if err != nil || got.Name != "Ana Maria" || got.Password != "$2a$hash" || got.Mail != u.Mail {
		t.Fatalf("GetUser: got=%+v err=%v", got, err)
	}
	if len(got.Ambitos) != 0 {
		t.Fatalf("GetUser should not attach ambitos")
	}

	// Ambitos
	work := model.NewAmbito("Work", 3)
	work.SetID(uuid.NewString())
	home := model.NewAmbito("Home", 1)
	home.SetID(uuid.NewString())
	u.AddAmbito(home)
	u.AddAmbito(work)
	for _, a := range []*model.Ambito{work, home} {
		if err := s.Ambitos().Save(ctx, a); err != nil {
			t.Fatalf("SaveAmbito: %v", err)
		}
	}
	lst, err := s.Ambitos().List(ctx, userID)
	if err != nil || len(lst) != 2 || lst[0].Name != "Home" || lst[1].Name != "Work" {
		t.Fatalf("ListAmbitos order: %v err=%v", names(lst), err)
	}
	if lst[1].Color != 3 || lst[1].UserID != userID || lst[1].Position != 1 {
		t.Fatalf("ListAmbitos fields: %+v", lst[1])
	}

	u.MoveAmbito(1, 0)
	for _, a := range u.Ambitos {
		if err := s.Ambitos().Save(ctx, a); err != nil {
			t.Fatalf("SaveAmbito position: %v", err)
		}
	}
	if lst, _ = s.Ambitos().List(ctx, userID); len(lst) != 2 || lst[0].Name != "Work" {
		t.Fatalf("ListAmbitos after reorder: %v", names(lst))
	}

	// Notes
	when := time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC)
	n1 := model.NewNote("groceries", "milk", "<p>milk</p>")
	n1.LastUpdate = when
	n1.SetTag("lists")
	n1.SetMedia(model.MediaImages, "img-1")
	n2 := model.NewNote("todo", "", "")
	n2.SetTag("lists")
	n3 := model.NewNote("loose", "", "")
	for _, n := range []*model.Note{n1, n2, n3} {
		home.AddNote(n)
		if err := s.Notes().Save(ctx, n); err != nil {
			t.Fatalf("SaveNote: %v", err)
		}
	}
	notes, err := s.Notes().List(ctx, home.ID)
	if err != nil || len(notes) != 3 {
		t.Fatalf("ListNotes: n=%d err=%v", len(notes), err)
	}
	g := byID(notes, n1.ID)
	if g == nil || g.Tag() != "lists" || g.TextHTML != "<p>milk</p>" || !g.HaveImages || g.ImagesID == nil || *g.ImagesID != "img-1" {
		t.Fatalf("ListNotes fields: %+v", g)
	}
	if !g.LastUpdate.Equal(when) {
		t.Fatalf("LastUpdate: want %v got %v", when, g.LastUpdate)
	}
	if g.HaveAudios || g.AudiosID != nil {
		t.Fatalf("unexpected audio reference: %+v", g)
	}
	if l := byID(notes, n3.ID); l == nil || l.FolderTag != nil {
		t.Fatalf("untagged note: %+v", l)
	}

	// Moving a note is a save with a new AmbitoID.
	home.RemoveNote(n3)
	work.AddNote(n3)
	if err := s.Notes().Save(ctx, n3); err != nil {
		t.Fatalf("SaveNote move: %v", err)
	}
	if notes, _ = s.Notes().List(ctx, work.ID); len(notes) != 1 || notes[0].ID != n3.ID {
		t.Fatalf("ListNotes target after move: %d", len(notes))
	}

	if err := s.Notes().Delete(ctx, n2.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := s.Notes().DeleteFolder(ctx, home.ID, "lists"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if notes, _ = s.Notes().List(ctx, home.ID); len(notes) != 0 {
		t.Fatalf("ListNotes after folder delete: %d", len(notes))
	}

	// Deleting an Ambito cascades to its notes.
	if err := s.Ambitos().Delete(ctx, userID, work.ID); err != nil {
		t.Fatalf("DeleteAmbito: %v", err)
	}
	if lst, _ = s.Ambitos().List(ctx, userID); len(lst) != 1 || lst[0].ID != home.ID {
		t.Fatalf("ListAmbitos after delete: %v", names(lst))
	}
	if notes, _ = s.Notes().List(ctx, work.ID); len(notes) != 0 {
		t.Fatalf("notes survived ambito delete: %d", len(notes))
	}
}

func names(as []*model.Ambito) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Name)
	}
	return out
}

func byID(ns []*model.Note, id string) *model.Note {
	for _, n := range ns {
		if n.ID == id {
			return n
		}
	}
	return nil
}
