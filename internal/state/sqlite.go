package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS geocode_index (
	identity     TEXT PRIMARY KEY,
	geocoded     INTEGER NOT NULL,
	last_updated TEXT    NOT NULL
);`

// SQLiteStore keeps the geocode index in a local SQLite file, one row per
// organization identity.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the index database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (Index, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity, geocoded, last_updated FROM geocode_index`)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	defer rows.Close()

	ix := make(Index)
	for rows.Next() {
		var (
			identity string
			geocoded int
			updated  string
		)
		if err := rows.Scan(&identity, &geocoded, &updated); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		at, err := time.Parse(time.RFC3339, updated)
		if err != nil {
			// A corrupt timestamp should not poison the run. Keep the
			// entry with a zero time.
			at = time.Time{}
		}
		ix[identity] = Entry{Geocoded: geocoded != 0, LastUpdated: at}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return ix, nil
}

func (s *SQLiteStore) Save(ctx context.Context, ix Index) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO geocode_index (identity, geocoded, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			geocoded     = excluded.geocoded,
			last_updated = excluded.last_updated`)
	if err != nil {
		return fmt.Errorf("prepare index upsert: %w", err)
	}
	defer stmt.Close()

	for identity, e := range ix {
		geocoded := 0
		if e.Geocoded {
			geocoded = 1
		}
		if _, err := stmt.ExecContext(ctx, identity, geocoded, e.LastUpdated.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("upsert index entry %s: %w", identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	return nil
}
