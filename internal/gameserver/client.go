// Package gameserver reads the dedicated server web feed and savegame
// files and turns them into a snapshot of server state.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farmwatch/internal/metrics"
)

const (
	savegamePage = "dedicated-server-savegame.html"
	statsFile    = "dedicated-server-stats.xml"
	maxBodyBytes = 32 << 20
)

var ErrNotConfigured = errors.New("game server feed not configured")

// Client talks to the dedicated server web interface.
type Client struct {
	baseURL string
	code    string
	inner   *http.Client
}

func NewClient(baseURL, code string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, code: code, inner: &http.Client{Timeout: timeout}}
}

// StatsURL derives the stats feed address from the configured savegame
// page address.
func (c *Client) StatsURL() string {
	base := strings.Replace(c.baseURL, savegamePage, statsFile, 1)
	return base + "?code=" + url.QueryEscape(c.code)
}

func (c *Client) APIFileURL(name string) string {
	return c.baseURL + "?file=" + url.QueryEscape(name) + "&code=" + url.QueryEscape(c.code)
}

// FetchServerStats downloads dedicated-server-stats.xml.
func (c *Client) FetchServerStats(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "stats", c.StatsURL())
}

// FetchAPIFile downloads a savegame file exposed by the web feed, e.g. "vehicles".
func (c *Client) FetchAPIFile(ctx context.Context, name string) ([]byte, error) {
	return c.get(ctx, "api_"+name, c.APIFileURL(name))
}

func (c *Client) get(ctx context.Context, source, endpoint string) (body []byte, err error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	defer func() { metrics.ObserveFetch(source, time.Since(start), err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s failed with status %d", source, resp.StatusCode)
	}
	return body, nil
}
