// Package snapshot provides the durable targets the post store is loaded
// from at startup and autosaved to: a SQLite file, a JSON file or PostgreSQL.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/markpost/post"
)

// SQLite stores the snapshot in a single SQLite database file. Each save
// replaces the posts table wholesale inside one transaction.
type SQLite struct {
	db *sql.DB
}

var _ post.Snapshotter = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path, ensures the data
// directory exists, and creates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time is all the autosaver needs; WAL keeps the file
	// readable by backup tools while a save is in progress.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    content TEXT NOT NULL,
    read_time TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

// Load reads the whole collection. A fresh database yields an empty snapshot.
func (s *SQLite) Load(ctx context.Context) (post.Snapshot, error) {
	var snap post.Snapshot

	var next string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'next_id'`).Scan(&next)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return snap, err
	default:
		if snap.NextID, err = strconv.ParseInt(next, 10, 64); err != nil {
			return snap, fmt.Errorf("parse next_id %q: %w", next, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author, content, read_time, created_at FROM posts ORDER BY id`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var p post.Post
		var created string
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Content, &p.ReadTime, &created); err != nil {
			return snap, err
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return snap, fmt.Errorf("post %d: parse created_at %q: %w", p.ID, created, err)
		}
		snap.Posts = append(snap.Posts, p)
	}
	return snap, rows.Err()
}

// Save replaces the stored collection with snap.
func (s *SQLite) Save(ctx context.Context, snap post.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts (id, title, author, content, read_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range snap.Posts {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Author, p.Content, p.ReadTime, p.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert post %d: %w", p.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES ('next_id', ?)`, strconv.FormatInt(snap.NextID, 10)); err != nil {
		return err
	}
	return tx.Commit()
}
