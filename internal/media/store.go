// Package media stores the file collections (images, documents, audios)
// referenced by notes. A collection is an ordered list of items addressed by
// a collection ID minted here.
package media

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Store persists media collections.
type Store interface {
	Put(ctx context.Context, kind model.MediaKind, items []model.MediaItem) (string, error)
	// Get returns a model.NotFoundError for an unknown collection.
	Get(ctx context.Context, kind model.MediaKind, collectionID string) ([]model.MediaItem, error)
	// Copy duplicates a collection under a fresh ID.
	Copy(ctx context.Context, kind model.MediaKind, collectionID string) (string, error)
	Delete(ctx context.Context, kind model.MediaKind, collectionID string) error
}

// Dialect adapts the shared SQL to a driver.
type Dialect struct {
	table    string
	numbered bool
}

var (
	SQLite   = Dialect{table: "MediaItems"}
	Postgres = Dialect{table: "media_items", numbered: true}
)

// rebind swaps ? placeholders for $n when the driver needs them.
func (d Dialect) rebind(q string) string {
	q = strings.ReplaceAll(q, "{table}", d.table)
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps collections in the MediaItems table of the local schema.
type SQLStore struct {
	db *sql.DB
	d  Dialect
}

// NewSQLStore wraps db; the media table must exist.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, d: d}
}

func (s *SQLStore) Put(ctx context.Context, kind model.MediaKind, items []model.MediaItem) (string, error) {
	if len(items) == 0 {
		return "", model.NewValidationError("items", "a media collection needs at least one item")
	}
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	q := s.d.rebind(`INSERT INTO {table} (CollectionId, Kind, Position, Name, Data) VALUES (?,?,?,?,?)`)
	for i, it := range items {
		if _, err := tx.ExecContext(ctx, q, id, string(kind), i, it.Name, it.Data); err != nil {
			return "", fmt.Errorf("put %s item %d: %w", kind, i, err)
		}
	}
	return id, tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, kind model.MediaKind, collectionID string) ([]model.MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
        SELECT Name, Data FROM {table} WHERE CollectionId = ? AND Kind = ? ORDER BY Position`),
		collectionID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MediaItem
	for rows.Next() {
		var it model.MediaItem
		if err := rows.Scan(&it.Name, &it.Data); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, model.NewNotFoundError(string(kind), collectionID)
	}
	return out, nil
}

func (s *SQLStore) Copy(ctx context.Context, kind model.MediaKind, collectionID string) (string, error) {
	id := uuid.NewString()
	res, err := s.db.ExecContext(ctx, s.d.rebind(`
        INSERT INTO {table} (CollectionId, Kind, Position, Name, Data)
        SELECT CAST(? AS TEXT), Kind, Position, Name, Data FROM {table} WHERE CollectionId = ? AND Kind = ?`),
		id, collectionID, string(kind))
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", model.NewNotFoundError(string(kind), collectionID)
	}
	return id, nil
}

func (s *SQLStore) Delete(ctx context.Context, kind model.MediaKind, collectionID string) error {
	_, err := s.db.ExecContext(ctx, s.d.rebind(`DELETE FROM {table} WHERE CollectionId = ? AND Kind = ?`),
		collectionID, string(kind))
	return err
}
