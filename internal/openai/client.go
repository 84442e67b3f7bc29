package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = goopenai.GPT3Dot5Turbo

	requestTimeout = 60 * time.Second
	temperature    = 0.7
)

// Client answers single-turn completions through the OpenAI chat API.
type Client struct {
	apiKey string
	model  string
	client *goopenai.Client
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{apiKey: apiKey, model: model}
	c.client = goopenai.NewClientWithConfig(c.config(""))
	return c
}

// SetTestTransport points the client at a fake API root.
func (c *Client) SetTestTransport(baseURL string) {
	c.client = goopenai.NewClientWithConfig(c.config(baseURL + "/v1"))
}

func (c *Client) config(baseURL string) goopenai.ClientConfig {
	cfg := goopenai.DefaultConfig(c.apiKey)
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return cfg
}

// Complete sends one system + user turn and returns the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("openai call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
