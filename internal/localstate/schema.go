package localstate

import (
	"database/sql"
)

// EnsureSQLiteSchema creates the local tables if they do not exist.
func EnsureSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            UserId TEXT PRIMARY KEY,
            Mail TEXT NOT NULL,
            Name TEXT NOT NULL DEFAULT '',
            LastName TEXT NOT NULL DEFAULT '',
            Password TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS Ambitos (
            AmbitoId TEXT PRIMARY KEY,
            UserId TEXT NOT NULL,
            Name TEXT NOT NULL,
            Color INTEGER NOT NULL,
            Position INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS Ambitos_UserId_Idx ON Ambitos(UserId, Position);`,
		`CREATE TABLE IF NOT EXISTS Notes (
            NoteId TEXT PRIMARY KEY,
            AmbitoId TEXT NOT NULL,
            FolderTag TEXT,
            Title TEXT NOT NULL,
            TextPlain TEXT NOT NULL,
            TextHtml TEXT NOT NULL,
            LastUpdate TIMESTAMP NOT NULL,
            HaveImages BOOLEAN NOT NULL DEFAULT 0,
            HaveDocuments BOOLEAN NOT NULL DEFAULT 0,
            HaveAudios BOOLEAN NOT NULL DEFAULT 0,
            ImagesId TEXT,
            DocumentsId TEXT,
            AudiosId TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS Notes_AmbitoId_Idx ON Notes(AmbitoId, FolderTag);`,
		`CREATE TABLE IF NOT EXISTS MediaItems (
            CollectionId TEXT NOT NULL,
            Kind TEXT NOT NULL,
            Position INTEGER NOT NULL,
            Name TEXT NOT NULL,
            Data BLOB NOT NULL,
            PRIMARY KEY(CollectionId, Position)
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
