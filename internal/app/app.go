// Package app assembles the harvest pipeline from configuration. It is
// shared by the service and the one-shot CLI.
package app

import (
	"log/slog"

	"github.com/MikeSquared-Agency/promptpin/internal/anthropic"
	"github.com/MikeSquared-Agency/promptpin/internal/config"
	"github.com/MikeSquared-Agency/promptpin/internal/generator"
	"github.com/MikeSquared-Agency/promptpin/internal/openai"
	"github.com/MikeSquared-Agency/promptpin/internal/processor"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

// Pipeline is the configured harvester and its generator. Generator is nil
// when no LLM key is configured; Processor is always usable and reports
// processor.ErrNoSource when TikAPI keys are missing.
type Pipeline struct {
	Processor *processor.Processor
	Generator *generator.Generator
}

// Completer returns the LLM client for the configured provider, or nil when
// its key is unset.
func Completer(cfg config.Config) generator.Completer {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey != "" {
			return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		}
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey != "" {
			return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
	}
	return nil
}

func Build(cfg config.Config, logger *slog.Logger) *Pipeline {
	var gen *generator.Generator
	if llm := Completer(cfg); llm != nil {
		gen = generator.New(llm, nil, nil, logger)
		logger.Info("llm client ready", "provider", cfg.LLMProvider)
	} else {
		logger.Warn("no llm configured, generated prompts use templates only", "provider", cfg.LLMProvider)
	}

	var source processor.VideoSource
	client, err := tikapi.NewClient(cfg.TikAPIBaseURL, cfg.TikAPIKey, cfg.TikAPIAccountKey)
	if err != nil {
		logger.Warn("tikapi not configured", "error", err)
	} else {
		source = client
	}

	opts := processor.Options{
		ExploreCount:        cfg.ExploreCount,
		SubtitleLanguage:    cfg.SubtitleLanguage,
		CommentLimit:        cfg.CommentLimit,
		ListingTimeout:      cfg.ListingTimeout,
		FetchTimeout:        cfg.FetchTimeout,
		RecheckWithHashtags: cfg.RecheckWithHashtags,
	}

	// Fallback generation still runs from templates without an LLM.
	var pg processor.PromptGenerator
	if gen != nil {
		pg = gen
	} else {
		pg = generator.New(nil, nil, nil, logger)
	}

	return &Pipeline{
		Processor: processor.New(source, pg, opts, logger),
		Generator: gen,
	}
}
