package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultCategoryCount is used when a category request asks for no count.
const DefaultCategoryCount = 3

var (
	ErrEmptyResponse = errors.New("generator: empty response from llm")
	ErrNoLLM         = errors.New("generator: no llm configured")
	ErrEmptyInput    = errors.New("generator: input is required")

	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	slugRe  = regexp.MustCompile(`[^a-z0-9]`)
)

// AuthoredPrompt is a prompt written by the LLM for a topic or category.
type AuthoredPrompt struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	PromptText    string   `json:"promptText"`
	ExampleOutput string   `json:"exampleOutput"`
	Category      string   `json:"category"`
	Keywords      []string `json:"keywords"`
}

// GeneratePrompt asks the LLM for one prompt about topic.
func (g *Generator) GeneratePrompt(ctx context.Context, topic string) (*AuthoredPrompt, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic", ErrEmptyInput)
	}

	raw, err := g.complete(ctx, authorSystemPrompt, fmt.Sprintf(authorUserPrompt, topic))
	if err != nil {
		return nil, err
	}

	var p AuthoredPrompt
	if err := json.Unmarshal([]byte(unfence(raw)), &p); err != nil {
		g.logger.Error("failed to parse authored prompt", "error", err, "raw", raw)
		return nil, fmt.Errorf("parse authored prompt: %w", err)
	}
	p.ID = fmt.Sprintf("ai-%s-%d", slug(topic), g.now().UnixMilli())
	return &p, nil
}

// GeneratePromptsForCategory asks the LLM for count prompts in category.
func (g *Generator) GeneratePromptsForCategory(ctx context.Context, category string, count int) ([]AuthoredPrompt, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category", ErrEmptyInput)
	}
	if count <= 0 {
		count = DefaultCategoryCount
	}

	raw, err := g.complete(ctx, categorySystemPrompt, fmt.Sprintf(categoryUserPrompt, count, category, category))
	if err != nil {
		return nil, err
	}

	var prompts []AuthoredPrompt
	if err := json.Unmarshal([]byte(unfence(raw)), &prompts); err != nil {
		g.logger.Error("failed to parse category prompts", "error", err, "category", category)
		return nil, fmt.Errorf("parse category prompts: %w", err)
	}

	ts := g.now().UnixMilli()
	for i := range prompts {
		prompts[i].ID = fmt.Sprintf("ai-%s-%d-%d", slug(category), ts, i+1)
	}
	return prompts, nil
}

// EnhancePrompt asks the LLM to improve an existing prompt.
func (g *Generator) EnhancePrompt(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: prompt text", ErrEmptyInput)
	}
	return g.complete(ctx, enhanceSystemPrompt, fmt.Sprintf(enhanceUserPrompt, text))
}

func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	if g.llm == nil {
		return "", ErrNoLLM
	}
	raw, err := g.llm.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyResponse
	}
	return raw, nil
}

// unfence returns the body of the first markdown code block, or s unchanged.
func unfence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return s
}

func slug(s string) string {
	return slugRe.ReplaceAllString(strings.ToLower(s), "-")
}
