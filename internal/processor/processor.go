package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/promptpin/internal/captions"
	"github.com/MikeSquared-Agency/promptpin/internal/classifier"
	"github.com/MikeSquared-Agency/promptpin/internal/dedup"
	"github.com/MikeSquared-Agency/promptpin/internal/extractor"
	"github.com/MikeSquared-Agency/promptpin/internal/lexicon"
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

// FeedTrending is the only listing the harvester knows how to read.
const FeedTrending = "trending"

var (
	ErrUnsupportedFeed = errors.New("unsupported feed type")
	ErrNoSource        = errors.New("TikAPI keys not configured")
)

// VideoSource lists videos and fetches their captions and comments.
type VideoSource interface {
	Explore(ctx context.Context, count int) ([]tikapi.RawVideo, error)
	Comments(ctx context.Context, videoID string, limit int) ([]tikapi.RawComment, error)
	Captions(ctx context.Context, trackURL string) (string, error)
}

// PromptGenerator synthesizes a prompt from source text. It never fails.
type PromptGenerator interface {
	GenerateCreativePrompt(ctx context.Context, source string) string
}

// Options tune a harvest.
type Options struct {
	ExploreCount     int
	SubtitleLanguage string
	CommentLimit     int
	ListingTimeout   time.Duration
	FetchTimeout     time.Duration

	// RecheckWithHashtags keeps trying later sources for videos with AI
	// hashtags even after an earlier source produced a prompt. The last
	// success wins. Off by default, so the first source that yields a prompt
	// ends the cascade for that video.
	RecheckWithHashtags bool
}

func DefaultOptions() Options {
	return Options{
		ExploreCount:     20,
		SubtitleLanguage: "eng-US",
		CommentLimit:     20,
		ListingTimeout:   30 * time.Second,
		FetchTimeout:     10 * time.Second,
	}
}

// Skipped describes a video that produced no prompt.
type Skipped struct {
	VideoID     string   `json:"id"`
	Hashtags    []string `json:"hashtags"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Reason      string   `json:"reason"`
}

// Result is the outcome of one harvest.
type Result struct {
	RunID      string                   `json:"runId"`
	Feed       string                   `json:"feed"`
	Videos     int                      `json:"videos"`
	Duplicates int                      `json:"duplicates"`
	Prompts    []prompt.ExtractedPrompt `json:"prompts"`
	Skipped    []Skipped                `json:"skipped"`
	StartedAt  time.Time                `json:"startedAt"`
	FinishedAt time.Time                `json:"finishedAt"`
}

// Processor mines prompts from a feed, one video at a time.
type Processor struct {
	source     VideoSource
	generator  PromptGenerator
	normalizer *captions.Normalizer
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
	opts       Options
	logger     *slog.Logger
}

// New builds a Processor. A nil source makes every harvest fail with
// ErrNoSource; a nil generator disables fallback generation.
func New(source VideoSource, gen PromptGenerator, opts Options, logger *slog.Logger) *Processor {
	defaults := DefaultOptions()
	if opts.ExploreCount <= 0 {
		opts.ExploreCount = defaults.ExploreCount
	}
	if opts.SubtitleLanguage == "" {
		opts.SubtitleLanguage = defaults.SubtitleLanguage
	}
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = defaults.CommentLimit
	}
	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = defaults.ListingTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.FetchTimeout
	}
	return &Processor{
		source:     source,
		generator:  gen,
		normalizer: captions.NewNormalizer(lexicon.Default()),
		extractor:  extractor.New(classifier.Default(), lexicon.Default()),
		classifier: classifier.Default(),
		opts:       opts,
		logger:     logger,
	}
}

// Harvest lists the feed and extracts at most one prompt per video. Only a
// missing source, an unknown feed or a failed listing fail the call.
func (p *Processor) Harvest(ctx context.Context, feed string) (*Result, error) {
	if feed == "" {
		feed = FeedTrending
	}
	if feed != FeedTrending {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFeed, feed)
	}
	if p.source == nil {
		return nil, ErrNoSource
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Feed:      feed,
		Skipped:   []Skipped{},
		StartedAt: time.Now().UTC(),
	}

	listCtx, cancel := context.WithTimeout(ctx, p.opts.ListingTimeout)
	videos, err := p.source.Explore(listCtx, p.opts.ExploreCount)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch trending videos: %w", err)
	}
	res.Videos = len(videos)

	p.logger.Info("harvest started", "run_id", res.RunID, "feed", feed, "videos", len(videos))

	var found []prompt.ExtractedPrompt
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("harvest interrupted: %w", err)
		}
		ep, skip := p.processVideo(ctx, v)
		if ep != nil {
			found = append(found, *ep)
			continue
		}
		res.Skipped = append(res.Skipped, *skip)
	}

	res.Prompts, res.Duplicates = dedup.Unique(found)
	dedup.Rank(res.Prompts)
	res.FinishedAt = time.Now().UTC()

	p.logger.Info("harvest complete",
		"run_id", res.RunID,
		"videos", res.Videos,
		"prompts", len(res.Prompts),
		"duplicates", res.Duplicates,
		"skipped", len(res.Skipped),
		"duration", res.FinishedAt.Sub(res.StartedAt).String(),
	)
	for _, s := range res.Skipped {
		p.logger.Debug("video skipped",
			"video_id", s.VideoID,
			"reason", s.Reason,
			"hashtags", strings.Join(s.Hashtags, ","),
			"author", s.Author,
		)
	}
	return res, nil
}

func (p *Processor) skip(v tikapi.RawVideo, reason string) *Skipped {
	return &Skipped{
		VideoID:     v.VideoID(),
		Hashtags:    v.HashtagNames(),
		Description: v.Description(),
		Author:      v.AuthorName(),
		Reason:      reason,
	}
}
