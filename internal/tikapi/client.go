package tikapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.tikapi.io"

	// commentPageSize is the largest page the comment listing serves.
	commentPageSize = 20
	maxErrorBody    = 512
)

var (
	// ErrMissingCredentials is returned by NewClient when either key is empty.
	ErrMissingCredentials = errors.New("tikapi: api key and account key are required")
	// ErrNoItems is returned when the explore listing carries no itemList.
	ErrNoItems = errors.New("tikapi: no videos found in response")
)

// StatusError reports a non-2xx answer from TikAPI or a caption host.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tikapi: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("tikapi: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the TikAPI REST endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	accountKey string
	client     *http.Client
}

// NewClient builds a client against baseURL. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL, apiKey, accountKey string) (*Client, error) {
	if apiKey == "" || accountKey == "" {
		return nil, ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		accountKey: accountKey,
		client:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Explore fetches the trending listing.
func (c *Client) Explore(ctx context.Context, count int) ([]RawVideo, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))

	var resp exploreResponse
	if err := c.getJSON(ctx, "/user/explore", params, &resp); err != nil {
		return nil, err
	}
	if resp.ItemList == nil {
		return nil, ErrNoItems
	}
	return resp.ItemList, nil
}

// Comments pages through a video's comments until limit entries are
// collected or the listing runs out. A 403 means comments are closed and
// yields an empty list.
func (c *Client) Comments(ctx context.Context, videoID string, limit int) ([]RawComment, error) {
	var (
		out    []RawComment
		cursor int64
	)
	for len(out) < limit {
		params := url.Values{}
		params.Set("media_id", videoID)
		params.Set("count", strconv.Itoa(min(commentPageSize, limit-len(out))))
		params.Set("cursor", strconv.FormatInt(cursor, 10))

		var page commentsResponse
		if err := c.getJSON(ctx, "/comment/list", params, &page); err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode == http.StatusForbidden {
				return out, nil
			}
			return nil, err
		}

		out = append(out, page.Comments...)
		if len(page.Comments) == 0 || !bool(page.HasMore) || page.Cursor <= cursor {
			break
		}
		cursor = page.Cursor
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Captions downloads a subtitle track. Track URLs point at a CDN and are
// fetched without TikAPI credentials.
func (c *Client) Captions(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req, "captions")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-ACCOUNT-KEY", c.accountKey)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}
	return body, nil
}
