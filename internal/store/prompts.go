package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

// Run is the summary of one harvest as archived.
type Run struct {
	ID         uuid.UUID
	Feed       string
	Trigger    string
	Videos     int
	Prompts    int
	Skipped    int
	Duplicates int
	StartedAt  time.Time
	FinishedAt time.Time
}

// SaveRun archives a harvest run and upserts its prompts in one
// transaction. A prompt already archived (same trimmed, lower-cased text)
// gets its like count refreshed and its seen counter bumped. It returns the
// number of prompts written.
func (s *Store) SaveRun(ctx context.Context, run Run, prompts []prompt.ExtractedPrompt) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO harvest_runs (id, feed, trigger, videos, prompts, skipped, duplicates, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.Feed, run.Trigger, run.Videos, run.Prompts, run.Skipped, run.Duplicates, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert harvest run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range prompts {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO harvested_prompts (id, prompt_key, prompt_text, title, author, video_id, video_url, thumbnail_url, like_count, source_kind, feed, first_run_id, last_run_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			ON CONFLICT (prompt_key) DO UPDATE SET
				like_count   = COALESCE(EXCLUDED.like_count, harvested_prompts.like_count),
				last_run_id  = EXCLUDED.last_run_id,
				last_seen_at = now(),
				seen_count   = harvested_prompts.seen_count + 1`,
			id, p.Key(), p.PromptText, p.Title, p.Author, p.VideoID, p.VideoURL, p.ThumbnailURL, p.LikeCount, string(p.SourceKind), run.Feed, run.ID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range prompts {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("upsert prompt: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(prompts), nil
}

// RecentPrompts returns archived prompts, most recently seen first.
func (s *Store) RecentPrompts(ctx context.Context, limit int) ([]prompt.ExtractedPrompt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt_text, title, author, video_id, video_url, thumbnail_url, like_count, source_kind
		FROM harvested_prompts
		ORDER BY last_seen_at DESC, like_count DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent prompts: %w", err)
	}
	defer rows.Close()

	out := []prompt.ExtractedPrompt{}
	for rows.Next() {
		var (
			p    prompt.ExtractedPrompt
			id   uuid.UUID
			kind string
		)
		if err := rows.Scan(&id, &p.PromptText, &p.Title, &p.Author, &p.VideoID, &p.VideoURL, &p.ThumbnailURL, &p.LikeCount, &kind); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		p.ID = id.String()
		p.SourceKind = prompt.SourceKind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}
