// internal/api/client.go
package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vindinium-archive/recorder/pkg/streaming"
)

// DefaultHost is the public arena server.
const DefaultHost = "http://vindinium.org"

// Client opens the arena server's live feeds.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a feed client. Feeds stay open for the length of a game, so the
// client sets no overall request timeout; connectTimeout bounds dialing and the
// wait for response headers.
func New(baseURL string, connectTimeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.ResponseHeaderTimeout = connectTimeout

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: transport},
	}
}

// BaseURL returns the server address without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NowPlaying opens the feed listing the ids of games in progress.
func (c *Client) NowPlaying(ctx context.Context) (*streaming.Reader, error) {
	return c.open(ctx, "/now-playing")
}

// Events opens the turn feed of one game.
func (c *Client) Events(ctx context.Context, gameID string) (*streaming.Reader, error) {
	if gameID == "" {
		return nil, fmt.Errorf("empty game id")
	}
	return c.open(ctx, "/events/"+url.PathEscape(gameID))
}

func (c *Client) open(ctx context.Context, path string) (*streaming.Reader, error) {
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", target, err)
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d", target, resp.StatusCode)
	}

	return streaming.NewReader(resp.Body, streaming.WithSource(target)), nil
}
