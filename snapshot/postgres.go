package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eringen/markpost/post"
)

// Postgres stores the snapshot in two PostgreSQL tables. Like the file
// backends it is rewritten wholesale on every save.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ post.Snapshotter = (*Postgres)(nil)

// OpenPostgres connects to url and creates the schema.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &Postgres{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS markpost_posts (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			read_time TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS markpost_meta (key TEXT PRIMARY KEY, value BIGINT NOT NULL)`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

// Load reads the whole collection.
func (s *Postgres) Load(ctx context.Context) (post.Snapshot, error) {
	var snap post.Snapshot
	err := s.pool.QueryRow(ctx, `SELECT value FROM markpost_meta WHERE key = 'next_id'`).Scan(&snap.NextID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return snap, err
	}

	rows, err := s.pool.Query(ctx, `SELECT id, title, author, content, read_time, created_at FROM markpost_posts ORDER BY id`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Content, &p.ReadTime, &p.CreatedAt); err != nil {
			return snap, err
		}
		snap.Posts = append(snap.Posts, p)
	}
	return snap, rows.Err()
}

// Save replaces the stored collection with snap in one transaction, sending
// the inserts as a single batch.
func (s *Postgres) Save(ctx context.Context, snap post.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM markpost_posts`)
	for _, p := range snap.Posts {
		batch.Queue(`INSERT INTO markpost_posts (id, title, author, content, read_time, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Title, p.Author, p.Content, p.ReadTime, p.CreatedAt)
	}
	batch.Queue(`INSERT INTO markpost_meta (key, value) VALUES ('next_id', $1) ON CONFLICT (key) DO UPDATE SET value = $1`, snap.NextID)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
