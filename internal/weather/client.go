// Package weather fetches forecasts from OpenWeatherMap and turns the
// forecast for a day into clothing recommendations.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrForecastUnavailable means the forecast has no entry on the requested date.
	ErrForecastUnavailable = errors.New("weather forecast not available")
	// ErrUpstream marks a failed call to the forecast provider.
	ErrUpstream = errors.New("weather provider error")
)

// Forecast is the subset of the 5-day/3-hour forecast response we use.
type Forecast struct {
	City struct {
		Name     string `json:"name"`
		Timezone *int   `json:"timezone"` // seconds east of UTC
	} `json:"city"`
	List []Entry `json:"list"`
}

type Entry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Forecaster returns the multi-day forecast for a location.
type Forecaster interface {
	Forecast(ctx context.Context, location string) (*Forecast, error)
}

// Client calls the OpenWeatherMap forecast endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Forecast(ctx context.Context, location string) (*Forecast, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("weather url: %w", err)
	}
	q := u.Query()
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(string(body), 200))
	}

	var f Forecast
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: decode forecast: %w", ErrUpstream, err)
	}
	return &f, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
