package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS harvest_runs (
	id          UUID PRIMARY KEY,
	feed        TEXT NOT NULL,
	trigger     TEXT NOT NULL DEFAULT '',
	videos      INT NOT NULL,
	prompts     INT NOT NULL,
	skipped     INT NOT NULL,
	duplicates  INT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS harvested_prompts (
	id            UUID PRIMARY KEY,
	prompt_key    TEXT NOT NULL UNIQUE,
	prompt_text   TEXT NOT NULL,
	title         TEXT NOT NULL,
	author        TEXT NOT NULL DEFAULT '',
	video_id      TEXT NOT NULL DEFAULT '',
	video_url     TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	like_count    BIGINT,
	source_kind   TEXT NOT NULL,
	feed          TEXT NOT NULL,
	first_run_id  UUID NOT NULL,
	last_run_id   UUID NOT NULL,
	seen_count    INT NOT NULL DEFAULT 1,
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS harvested_prompts_last_seen_idx
	ON harvested_prompts (last_seen_at DESC);
`

// EnsureSchema creates the archive tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
