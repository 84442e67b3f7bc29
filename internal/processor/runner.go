package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/promptpin/internal/hermes"
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
	"github.com/MikeSquared-Agency/promptpin/internal/store"
)

// Archive persists finished harvests.
type Archive interface {
	SaveRun(ctx context.Context, run store.Run, prompts []prompt.ExtractedPrompt) (int, error)
}

// ResultCache keeps the latest prompt list per feed.
type ResultCache interface {
	Get(ctx context.Context, feed string) ([]prompt.ExtractedPrompt, bool, error)
	Set(ctx context.Context, feed string, prompts []prompt.ExtractedPrompt) error
	Invalidate(ctx context.Context, feed string) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

// requestTimeout bounds a harvest triggered over NATS.
const requestTimeout = 5 * time.Minute

// Runner wraps a Processor with the side effects of a completed harvest:
// archive, cache refresh and event publication. Every collaborator is
// optional and its failures are logged, never returned.
type Runner struct {
	processor *Processor
	archive   Archive
	cache     ResultCache
	publisher Publisher
	logger    *slog.Logger
}

func NewRunner(p *Processor, archive Archive, cache ResultCache, pub Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		processor: p,
		archive:   archive,
		cache:     cache,
		publisher: pub,
		logger:    logger,
	}
}

// Cached returns the cached prompts for feed, if any.
func (r *Runner) Cached(ctx context.Context, feed string) ([]prompt.ExtractedPrompt, bool) {
	if r.cache == nil {
		return nil, false
	}
	prompts, ok, err := r.cache.Get(ctx, feed)
	if err != nil {
		r.logger.Warn("cache read failed", "feed", feed, "error", err)
		return nil, false
	}
	return prompts, ok
}

// Invalidate drops the cached prompt list for feed. Errors are logged only.
func (r *Runner) Invalidate(ctx context.Context, feed string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, feed); err != nil {
		r.logger.Warn("cache invalidate failed", "feed", feed, "error", err)
	}
}

// Run harvests feed and fans the result out. trigger names what started the
// run ("api", "schedule", "nats", "cli").
func (r *Runner) Run(ctx context.Context, feed, trigger string) (*Result, error) {
	res, err := r.processor.Harvest(ctx, feed)
	if err != nil {
		return nil, err
	}
	log := r.logger.With("run_id", res.RunID, "trigger", trigger)

	if r.archive != nil {
		saved, err := r.archive.SaveRun(ctx, toRun(res, trigger), res.Prompts)
		if err != nil {
			log.Error("failed to archive harvest", "error", err)
		} else {
			log.Info("harvest archived", "prompts", saved)
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, res.Feed, res.Prompts); err != nil {
			log.Warn("failed to cache prompts", "error", err)
		}
	}

	if r.publisher != nil {
		evt := hermes.HarvestedEvent{
			RunID:      res.RunID,
			Feed:       res.Feed,
			Videos:     res.Videos,
			Prompts:    len(res.Prompts),
			Skipped:    len(res.Skipped),
			Duplicates: res.Duplicates,
			Trigger:    trigger,
			FinishedAt: res.FinishedAt,
		}
		if err := r.publisher.Publish(hermes.SubjectHarvested, evt); err != nil {
			log.Error("failed to publish harvested event", "error", err)
		}
	}

	return res, nil
}

// HandleHarvestRequested is the NATS handler for promptpin.tiktok.harvest.requested.
func (r *Runner) HandleHarvestRequested(subject string, data []byte) {
	req, err := hermes.ParseHarvestRequest(data)
	if err != nil {
		r.logger.Error("failed to parse harvest request", "subject", subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r.logger.Info("harvest requested", "feed", req.Feed, "requested_by", req.RequestedBy)
	if _, err := r.Run(ctx, req.Feed, "nats"); err != nil {
		r.logger.Error("requested harvest failed", "feed", req.Feed, "error", err)
	}
}

func toRun(res *Result, trigger string) store.Run {
	id, err := uuid.Parse(res.RunID)
	if err != nil {
		id = uuid.New()
	}
	return store.Run{
		ID:         id,
		Feed:       res.Feed,
		Trigger:    trigger,
		Videos:     res.Videos,
		Prompts:    len(res.Prompts),
		Skipped:    len(res.Skipped),
		Duplicates: res.Duplicates,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
}
