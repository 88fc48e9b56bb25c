// Package postgres implements store.Store on PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id   TEXT PRIMARY KEY,
            mail      TEXT NOT NULL,
            name      TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            password  TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS ambitos (
            ambito_id TEXT PRIMARY KEY,
            user_id   TEXT NOT NULL,
            name      TEXT NOT NULL,
            color     INTEGER NOT NULL,
            position  INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS ambitos_user_idx ON ambitos(user_id, position)`,
		`CREATE TABLE IF NOT EXISTS notes (
            note_id        TEXT PRIMARY KEY,
            ambito_id      TEXT NOT NULL,
            folder_tag     TEXT,
            title          TEXT NOT NULL,
            text_plain     TEXT NOT NULL,
            text_html      TEXT NOT NULL,
            last_update    TIMESTAMPTZ NOT NULL,
            have_images    BOOLEAN NOT NULL DEFAULT FALSE,
            have_documents BOOLEAN NOT NULL DEFAULT FALSE,
            have_audios    BOOLEAN NOT NULL DEFAULT FALSE,
            images_id      TEXT,
            documents_id   TEXT,
            audios_id      TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS notes_ambito_idx ON notes(ambito_id, folder_tag)`,
		// media_items shares its column names with the SQLite MediaItems table
		`CREATE TABLE IF NOT EXISTS media_items (
            CollectionId TEXT NOT NULL,
            Kind         TEXT NOT NULL,
            Position     INTEGER NOT NULL,
            Name         TEXT NOT NULL,
            Data         BYTEA NOT NULL,
            PRIMARY KEY (CollectionId, Position)
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users     { return &users{db: s.db} }
func (s *pgStore) Ambitos() store.Ambitos { return &ambitos{db: s.db} }
func (s *pgStore) Notes() store.Notes     { return &notes{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---
type users struct{ db *sql.DB }

func (r *users) Save(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (user_id, mail, name, last_name, password)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id) DO UPDATE SET
            mail=EXCLUDED.mail, name=EXCLUDED.name, last_name=EXCLUDED.last_name, password=EXCLUDED.password
    `, u.ID, u.Mail, u.Name, u.LastName, u.Password)
	return err
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `
        SELECT user_id, mail, name, last_name, password FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&u.ID, &u.Mail, &u.Name, &u.LastName, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("user", userID)
		}
		return nil, err
	}
	return &u, nil
}

// --- Ambitos ---
type ambitos struct{ db *sql.DB }

func (r *ambitos) Save(ctx context.Context, a *model.Ambito) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ambitos (ambito_id, user_id, name, color, position)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (ambito_id) DO UPDATE SET
            user_id=EXCLUDED.user_id, name=EXCLUDED.name, color=EXCLUDED.color, position=EXCLUDED.position
    `, a.ID, a.UserID, a.Name, a.Color, a.Position)
	return err
}

func (r *ambitos) List(ctx context.Context, userID string) ([]*model.Ambito, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT ambito_id, user_id, name, color, position FROM ambitos
        WHERE user_id=$1 ORDER BY position, ambito_id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Ambito
	for rows.Next() {
		a := model.NewAmbito("", 0)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Color, &a.Position); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ambitos) Delete(ctx context.Context, userID, ambitoID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM ambitos WHERE user_id=$1 AND ambito_id=$2`, userID, ambitoID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE ambito_id=$1`, ambitoID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Notes ---
type notes struct{ db *sql.DB }

func (r *notes) Save(ctx context.Context, n *model.Note) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO notes (note_id, ambito_id, folder_tag, title, text_plain, text_html, last_update,
            have_images, have_documents, have_audios, images_id, documents_id, audios_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (note_id) DO UPDATE SET
            ambito_id=EXCLUDED.ambito_id, folder_tag=EXCLUDED.folder_tag, title=EXCLUDED.title,
            text_plain=EXCLUDED.text_plain, text_html=EXCLUDED.text_html, last_update=EXCLUDED.last_update,
            have_images=EXCLUDED.have_images, have_documents=EXCLUDED.have_documents, have_audios=EXCLUDED.have_audios,
            images_id=EXCLUDED.images_id, documents_id=EXCLUDED.documents_id, audios_id=EXCLUDED.audios_id
    `, n.ID, n.AmbitoID, n.FolderTag, n.Title, n.TextPlain, n.TextHTML, n.LastUpdate.UTC(),
		n.HaveImages, n.HaveDocuments, n.HaveAudios, n.ImagesID, n.DocumentsID, n.AudiosID)
	return err
}

func (r *notes) List(ctx context.Context, ambitoID string) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT note_id, ambito_id, folder_tag, title, text_plain, text_html, last_update,
            have_images, have_documents, have_audios, images_id, documents_id, audios_id
        FROM notes WHERE ambito_id=$1 ORDER BY last_update, note_id
    `, ambitoID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.AmbitoID, &n.FolderTag, &n.Title, &n.TextPlain, &n.TextHTML, &n.LastUpdate,
			&n.HaveImages, &n.HaveDocuments, &n.HaveAudios, &n.ImagesID, &n.DocumentsID, &n.AudiosID); err != nil {
			return nil, err
		}
		n.LastUpdate = n.LastUpdate.UTC()
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *notes) Delete(ctx context.Context, noteID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id=$1`, noteID)
	return err
}

func (r *notes) DeleteFolder(ctx context.Context, ambitoID, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE ambito_id=$1 AND folder_tag=$2`, ambitoID, name)
	return err
}
