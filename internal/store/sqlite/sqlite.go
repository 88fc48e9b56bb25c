// Package sqlite implements store.Store on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// NewWithDB wraps an open connection whose schema is in place.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users     { return &users{db: s.db} }
func (s *sqliteStore) Ambitos() store.Ambitos { return &ambitos{db: s.db} }
func (s *sqliteStore) Notes() store.Notes     { return &notes{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// --- Users ---
type users struct{ db *sql.DB }

func (r *users) Save(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO Users (UserId, Mail, Name, LastName, Password) VALUES (?,?,?,?,?)
        ON CONFLICT(UserId) DO UPDATE SET
            Mail=excluded.Mail, Name=excluded.Name, LastName=excluded.LastName, Password=excluded.Password`,
		u.ID, u.Mail, u.Name, u.LastName, u.Password)
	return err
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT UserId, Mail, Name, LastName, Password FROM Users WHERE UserId = ?`, userID)
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
        INSERT INTO Ambitos (AmbitoId, UserId, Name, Color, Position) VALUES (?,?,?,?,?)
        ON CONFLICT(AmbitoId) DO UPDATE SET
            UserId=excluded.UserId, Name=excluded.Name, Color=excluded.Color, Position=excluded.Position`,
		a.ID, a.UserID, a.Name, a.Color, a.Position)
	return err
}

func (r *ambitos) List(ctx context.Context, userID string) ([]*model.Ambito, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT AmbitoId, UserId, Name, Color, Position FROM Ambitos
        WHERE UserId = ? ORDER BY Position, AmbitoId`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

	if _, err := tx.ExecContext(ctx, `DELETE FROM Notes WHERE AmbitoId = ? AND AmbitoId IN (SELECT AmbitoId FROM Ambitos WHERE UserId = ?)`, ambitoID, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM Ambitos WHERE UserId = ? AND AmbitoId = ?`, userID, ambitoID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Notes ---
type notes struct{ db *sql.DB }

func (r *notes) Save(ctx context.Context, n *model.Note) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO Notes (NoteId, AmbitoId, FolderTag, Title, TextPlain, TextHtml, LastUpdate,
            HaveImages, HaveDocuments, HaveAudios, ImagesId, DocumentsId, AudiosId)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(NoteId) DO UPDATE SET
            AmbitoId=excluded.AmbitoId, FolderTag=excluded.FolderTag, Title=excluded.Title,
            TextPlain=excluded.TextPlain, TextHtml=excluded.TextHtml, LastUpdate=excluded.LastUpdate,
            HaveImages=excluded.HaveImages, HaveDocuments=excluded.HaveDocuments, HaveAudios=excluded.HaveAudios,
            ImagesId=excluded.ImagesId, DocumentsId=excluded.DocumentsId, AudiosId=excluded.AudiosId`,
		n.ID, n.AmbitoID, n.FolderTag, n.Title, n.TextPlain, n.TextHTML, n.LastUpdate.UTC(),
		n.HaveImages, n.HaveDocuments, n.HaveAudios, n.ImagesID, n.DocumentsID, n.AudiosID)
	return err
}

func (r *notes) List(ctx context.Context, ambitoID string) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT NoteId, AmbitoId, FolderTag, Title, TextPlain, TextHtml, LastUpdate,
            HaveImages, HaveDocuments, HaveAudios, ImagesId, DocumentsId, AudiosId
        FROM Notes WHERE AmbitoId = ? ORDER BY LastUpdate, NoteId`, ambitoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notes) Delete(ctx context.Context, noteID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM Notes WHERE NoteId = ?`, noteID)
	return err
}

func (r *notes) DeleteFolder(ctx context.Context, ambitoID, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM Notes WHERE AmbitoId = ? AND FolderTag = ?`, ambitoID, name)
	return err
}

func scanNote(rows *sql.Rows) (*model.Note, error) {
	var n model.Note
	var tag, images, documents, audios sql.NullString
	if err := rows.Scan(&n.ID, &n.AmbitoID, &tag, &n.Title, &n.TextPlain, &n.TextHTML, &n.LastUpdate,
		&n.HaveImages, &n.HaveDocuments, &n.HaveAudios, &images, &documents, &audios); err != nil {
		return nil, err
	}
	n.FolderTag = nullable(tag)
	n.ImagesID = nullable(images)
	n.DocumentsID = nullable(documents)
	n.AudiosID = nullable(audios)
	n.LastUpdate = n.LastUpdate.UTC()
	return &n, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return model.StrPtr(ns.String)
}
