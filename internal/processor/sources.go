package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/promptpin/internal/classifier"
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

const (
	reasonNoPrompt   = "no_prompt"
	reasonEmptyText  = "empty_after_cleanup"
	reasonProcessing = "processing_error"
)

type candidate struct {
	text      string
	kind      prompt.SourceKind
	likeCount *int64
}

// processVideo tries captions, then description and hashtags, then comments,
// then fallback generation. Exactly one of the results is non-nil.
func (p *Processor) processVideo(ctx context.Context, v tikapi.RawVideo) (ep *prompt.ExtractedPrompt, skipped *Skipped) {
	log := p.logger.With("video_id", v.VideoID())
	defer func() {
		if r := recover(); r != nil {
			log.Error("video processing panicked", "panic", fmt.Sprint(r))
			ep, skipped = nil, p.skip(v, reasonProcessing)
		}
	}()

	hasAITags := p.classifier.HasAIPromptsInHashtags(v.TextExtra)
	recheck := p.opts.RecheckWithHashtags && hasAITags

	var found *candidate
	normalized := p.fromCaptions(ctx, v, &found)

	if found == nil || recheck {
		if c := p.fromDescription(v); c != nil {
			found = c
		}
	}
	if found == nil || recheck {
		if c := p.fromComments(ctx, v); c != nil {
			found = c
		}
	}
	if found == nil && hasAITags && p.generator != nil {
		source := strings.TrimSpace(v.Description())
		if source == "" {
			source = normalized
		}
		if source != "" {
			found = &candidate{
				text: p.generator.GenerateCreativePrompt(ctx, source),
				kind: prompt.SourceGenerated,
			}
		}
	}

	if found == nil {
		return nil, p.skip(v, reasonNoPrompt)
	}

	text := prompt.Truncate(classifier.StripTokens(found.text))
	if text == "" {
		log.Warn("prompt empty after cleanup", "source", found.kind)
		return nil, p.skip(v, reasonEmptyText)
	}

	log.Info("prompt found", "source", found.kind, "prompt", text)
	return &prompt.ExtractedPrompt{
		ID:           uuid.NewString(),
		PromptText:   text,
		Title:        text,
		Author:       v.AuthorName(),
		VideoURL:     v.VideoURL(),
		ThumbnailURL: v.ThumbnailURL(),
		LikeCount:    found.likeCount,
		SourceKind:   found.kind,
		VideoID:      v.VideoID(),
	}, nil
}

// fromCaptions sets *found when the caption track yields a prompt and returns
// the normalized transcript for later fallback generation.
func (p *Processor) fromCaptions(ctx context.Context, v tikapi.RawVideo, found **candidate) string {
	trackURL := v.SubtitleURL(p.opts.SubtitleLanguage)
	if trackURL == "" {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()

	raw, err := p.source.Captions(fetchCtx, trackURL)
	if err != nil {
		p.logger.Warn("caption fetch failed", "video_id", v.VideoID(), "error", err)
		return ""
	}

	normalized := p.normalizer.Normalize(raw)
	if text := p.extractor.Extract(normalized); text != "" {
		*found = &candidate{text: text, kind: prompt.SourceCaptions}
	}
	return normalized
}

func (p *Processor) fromDescription(v tikapi.RawVideo) *candidate {
	combined := strings.TrimSpace(v.Description() + " " + strings.Join(v.HashtagNames(), " "))
	if combined == "" {
		return nil
	}
	if text := p.extractor.Extract(combined); text != "" {
		return &candidate{text: text, kind: prompt.SourceDescription}
	}
	return nil
}

// fromComments extracts from the first usable comment in listing order. The
// like count reported is the highest among all clean comments.
func (p *Processor) fromComments(ctx context.Context, v tikapi.RawVideo) *candidate {
	id := v.VideoID()
	if id == "" {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()

	comments, err := p.source.Comments(fetchCtx, id, p.opts.CommentLimit)
	if err != nil {
		p.logger.Warn("comment fetch failed", "video_id", id, "error", err)
		return nil
	}

	var (
		clean    []tikapi.RawComment
		maxLikes int64
	)
	for _, c := range comments {
		if !p.classifier.IsCleanPrompt(c.Text) {
			continue
		}
		clean = append(clean, c)
		maxLikes = max(maxLikes, c.DiggCount)
	}

	for _, c := range clean {
		if text := p.extractor.Extract(c.Text); text != "" {
			return &candidate{text: text, kind: prompt.SourceComment, likeCount: prompt.Int64(maxLikes)}
		}
	}
	return nil
}
