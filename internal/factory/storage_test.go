package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/config"
	"github.com/PIS-2020-2021/PIS/internal/model"
)

func TestNewStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "lize.db")

	s, err := NewStorage(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer s.Close()

	if err := s.Store.Users().Save(ctx, &model.User{ID: "u1", Mail: "a@b.c"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := s.Media.Put(ctx, model.MediaImages, []model.MediaItem{{Name: "x", Data: []byte{1}}}); err != nil {
		t.Fatalf("put media: %v", err)
	}
}

func TestNewStorage_Rejects(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "postgres"
	if _, err := NewStorage(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for postgres without DSN")
	}
	cfg.DBDriver = "mysql"
	if _, err := NewStorage(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
