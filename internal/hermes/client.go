package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectHarvested carries a HarvestedEvent after every completed harvest.
	SubjectHarvested = "promptpin.tiktok.harvested"
	// SubjectHarvestRequested triggers an on-demand harvest.
	SubjectHarvestRequested = "promptpin.tiktok.harvest.requested"
)

// HarvestedEvent summarizes one harvest run.
type HarvestedEvent struct {
	RunID      string    `json:"run_id"`
	Feed       string    `json:"feed"`
	Videos     int       `json:"videos"`
	Prompts    int       `json:"prompts"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
	Trigger    string    `json:"trigger"`
	FinishedAt time.Time `json:"finished_at"`
}

// HarvestRequest asks the service to harvest a feed.
type HarvestRequest struct {
	Feed        string `json:"feed"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// ParseHarvestRequest decodes a request payload. An empty payload or feed
// means the trending feed.
func ParseHarvestRequest(data []byte) (HarvestRequest, error) {
	var req HarvestRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return HarvestRequest{}, fmt.Errorf("parse harvest request: %w", err)
		}
	}
	if req.Feed == "" {
		req.Feed = "trending"
	}
	return req, nil
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("promptpin"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	return c.conn.IsConnected()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
