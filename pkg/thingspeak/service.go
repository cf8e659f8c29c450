package thingspeak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

// Client reads channel feeds from a ThingSpeak compatible API.
// No retries and no timeouts other than what the http.Client has.
type Client struct {
	httpClient *http.Client
	baseUrl    string
}

// New creates a client. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client, baseUrl string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		httpClient: httpClient,
		baseUrl:    baseUrl,
	}
}

// FetchLatest returns the most recent entry of the channel,
// or nil without error when the channel has no entries yet.
func (c *Client) FetchLatest(ctx context.Context, channelId, readKey string) (*types.RawEntry, error) {
	u := c.LatestUrl(channelId, readKey)

	var raw json.RawMessage
	if err := c.getJson(ctx, u, &raw); err != nil {
		return nil, err
	}
	// Channels without any entries answer with a bare -1.
	if string(bytes.TrimSpace(raw)) == "-1" {
		return nil, nil
	}

	var entry types.RawEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return &entry, nil
}

// FetchHistory returns up to results entries, oldest first as sent upstream.
func (c *Client) FetchHistory(ctx context.Context, channelId string, results int, readKey string) ([]types.RawEntry, error) {
	u := c.HistoryUrl(channelId, results, readKey)

	var feed ChannelFeed
	if err := c.getJson(ctx, u, &feed); err != nil {
		return nil, err
	}
	return feed.Feeds, nil
}

func (c *Client) LatestUrl(channelId, readKey string) string {
	return c.BuildUrl(readKey, "/channels", url.PathEscape(channelId), "/feeds/last.json")
}

func (c *Client) HistoryUrl(channelId string, results int, readKey string) string {
	return c.BuildUrl(readKey, "/channels", url.PathEscape(channelId), "/feeds.json?results="+strconv.Itoa(results))
}

// BuildUrl joins path parts onto the base url with single slashes
// and appends the api key when one is given.
func (c *Client) BuildUrl(readKey string, parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			normalized = append(normalized, p)
		}
	}

	u := strings.TrimRight(c.baseUrl, "/") + "/" + strings.Join(normalized, "/")

	if readKey != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "api_key=" + url.QueryEscape(readKey)
	}
	return u
}

func (c *Client) getJson(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	log.Printf("thingspeak: GET %s%s", req.URL.Host, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Best effort, a broken body must not hide the status.
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = nil
		}
		return &TransportFailure{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse body: %w", err)
	}
	return nil
}
