package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/PIS-2020-2021/PIS/internal/media"
	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
	"github.com/PIS-2020-2021/PIS/internal/store/storetest"
)

// testDSN returns LIZE_POSTGRES_DSN, or starts a throwaway postgres container
// when LIZE_TESTCONTAINERS=1. Otherwise the test is skipped.
func testDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("LIZE_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("LIZE_TESTCONTAINERS") != "1" {
		t.Skip("LIZE_POSTGRES_DSN not set and LIZE_TESTCONTAINERS!=1; skipping postgres store integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "lize",
			"POSTGRES_PASSWORD": "lize",
			"POSTGRES_DB":       "lize",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://lize:lize@%s:%s/lize?sslmode=disable", host, port.Port())
}

func openPG(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("postgres schema: %v", err)
	}
	return db
}

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	return NewWithDB(openPG(t))
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestPostgresMedia_CopyAndDelete(t *testing.T) {
	ctx := context.Background()
	st := media.NewSQLStore(openPG(t), media.Postgres)

	id, err := st.Put(ctx, model.MediaAudios, []model.MediaItem{{Name: "memo.ogg", Data: []byte("ogg")}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	dup, err := st.Copy(ctx, model.MediaAudios, id)
	if err != nil || dup == id {
		t.Fatalf("copy: id=%s err=%v", dup, err)
	}
	if err := st.Delete(ctx, model.MediaAudios, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if items, err := st.Get(ctx, model.MediaAudios, dup); err != nil || len(items) != 1 {
		t.Fatalf("get copy: items=%v err=%v", items, err)
	}
}
