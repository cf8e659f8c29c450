package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const currentVariables = "temperature_2m,precipitation,wind_speed_10m,weather_code"

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
		baseUrl:    strings.TrimRight(baseUrl, "/"),
	}
}

func (c *Client) CurrentUrl(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", currentVariables)
	return c.baseUrl + "/v1/forecast?" + q.Encode()
}

// Current fetches the current weather at lat/lon.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Current, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.CurrentUrl(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	log.Printf("weather: GET %s%s", req.URL.Host, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: parse body: %w", ErrWeatherUnavailable, err)
	}
	if body.Current == nil {
		return nil, fmt.Errorf("%w: no current block", ErrWeatherUnavailable)
	}
	return body.Current, nil
}
