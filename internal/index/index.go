// Package index persists extracted file previews in a local SQLite
// database so keyword matching works offline, without re-reading or
// re-sending documents.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tidydir/tidydir/internal/extract"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens <baseDir>/.tidydir/index.db.
func Open(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, ".tidydir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create .tidydir dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path       TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		preview    TEXT NOT NULL DEFAULT '',
		size       INTEGER NOT NULL DEFAULT 0,
		indexed_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts the entries, replacing stale previews for re-indexed
// paths.
func (s *Store) Put(entries []extract.FileEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, entry := range entries {
		_, err := tx.Exec(
			`INSERT INTO files (path, kind, preview, size, indexed_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET kind=excluded.kind, preview=excluded.preview,
			 size=excluded.size, indexed_at=excluded.indexed_at`,
			entry.Path, string(entry.Kind), entry.Preview, entry.Size, now,
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", entry.Path, err)
		}
	}
	return tx.Commit()
}

// Match returns indexed files whose preview or path contains the query,
// case-insensitively, ordered by path.
func (s *Store) Match(query string) ([]extract.FileEntry, error) {
	rows, err := s.db.Query(
		`SELECT path, kind, preview, size FROM files
		 WHERE preview LIKE '%' || ? || '%' OR path LIKE '%' || ? || '%'
		 ORDER BY path`,
		query, query,
	)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	var entries []extract.FileEntry
	for rows.Next() {
		var entry extract.FileEntry
		var kind string
		if err := rows.Scan(&entry.Path, &kind, &entry.Preview, &entry.Size); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.Kind = extract.Kind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count reports how many files are indexed.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}
