package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("LIZE_HOME", home)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %s", cfg.DBDriver)
	}
	if cfg.SQLitePath != filepath.Join(home, "lize.db") {
		t.Fatalf("unexpected sqlite path %s", cfg.SQLitePath)
	}
	if cfg.UserID != "local_user" || cfg.HydrateTimeout != 10*time.Second {
		t.Fatalf("unexpected session defaults: %+v", cfg)
	}
	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development env, got %s", cfg.Environment)
	}
}

func TestNew_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIZE_DB_DRIVER", "postgres")
	t.Setenv("LIZE_POSTGRES_DSN", "postgres://u:p@localhost/lize")
	t.Setenv("LIZE_HYDRATE_TIMEOUT", "250ms")
	t.Setenv("LIZE_SHARDS", "8")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.DBDriver != "postgres" || cfg.SQLitePath != "" {
		t.Fatalf("unexpected storage config: %+v", cfg)
	}
	if cfg.HydrateTimeout != 250*time.Millisecond || cfg.Shards != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestNew_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LIZE_HOME", t.TempDir())
	if err := os.WriteFile(".env", []byte("LIZE_USER_ID=from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable in-process; register it for cleanup.
	t.Setenv("LIZE_USER_ID", "")
	os.Unsetenv("LIZE_USER_ID")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.UserID != "from_file" {
		t.Fatalf("expected user from .env, got %q", cfg.UserID)
	}
}

func TestResolveDefaults_Rejects(t *testing.T) {
	cases := map[string]Config{
		"unknown driver":    {DBDriver: "mysql", UserID: "u", HydrateTimeout: time.Second},
		"postgres w/o dsn":  {DBDriver: "postgres", UserID: "u", HydrateTimeout: time.Second},
		"empty user":        {DBDriver: "sqlite", SQLitePath: "x.db", HydrateTimeout: time.Second},
		"zero hydrate time": {DBDriver: "sqlite", SQLitePath: "x.db", UserID: "u"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.ResolveDefaults(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if cfg.Environment != EnvTesting || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected testing config: %+v", cfg)
	}
}
