package localstate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store/memstore"
)

func TestDataDir_Override(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "state")
	t.Setenv(envHome, tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir error: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected dir %s, got %s", tmp, dir)
	}

	p, err := DBPath()
	if err != nil {
		t.Fatalf("DBPath error: %v", err)
	}
	if want := filepath.Join(tmp, dbFilename); p != want {
		t.Fatalf("expected path %s, got %s", want, p)
	}
}

func TestDataDir_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv(envHome, "")
	t.Setenv(envXDGData, xdg)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir error: %v", err)
	}
	if want := filepath.Join(xdg, appDir); dir != want {
		t.Fatalf("expected dir %s, got %s", want, dir)
	}
}

func TestEnsureDefaultUser(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	created, err := EnsureDefaultUser(ctx, st, "local_user")
	if err != nil || !created {
		t.Fatalf("first bootstrap: created=%v err=%v", created, err)
	}
	as, err := st.Ambitos().List(ctx, "local_user")
	if err != nil || len(as) != 1 || as[0].Name != model.DefaultAmbitoName {
		t.Fatalf("default ambito: %v err=%v", as, err)
	}

	created, err = EnsureDefaultUser(ctx, st, "local_user")
	if err != nil || created {
		t.Fatalf("second bootstrap should be a no-op: created=%v err=%v", created, err)
	}
}
