// Package nws wraps the api.weather.gov endpoints the pipelines consume:
// the points lookup that maps coordinates to NWS zone identifiers, and the
// active-alerts feed.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// Client talks to api.weather.gov. The API requires a descriptive
// User-Agent; requests without one are rejected.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a weather.gov client.
func NewClient(userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.weather.gov",
		logger:     logger,
	}
}

// Lookup maps coordinates to the NWS zone identifiers covering that point.
// Coordinates are templated at 4 decimal places, the precision the points
// endpoint canonicalizes to. Hierarchical identifiers are reduced to their
// final path segment.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (domain.ZoneSet, error) {
	fullURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.ZoneSet{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ZoneSet{}, fmt.Errorf("points request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.ZoneSet{}, fmt.Errorf("points API error: status %d: %s", resp.StatusCode, body)
	}

	var r pointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.ZoneSet{}, fmt.Errorf("decode response: %w", err)
	}

	p := r.Properties
	return domain.ZoneSet{
		ForecastZone: domain.TrimZonePath(p.ForecastZone),
		CWAOffice:    p.CWA,
		CountyZone:   domain.TrimZonePath(p.County),
		FireZone:     domain.TrimZonePath(p.FireWeatherZone),
		GridID:       p.GridID,
		GridX:        p.GridX,
		GridY:        p.GridY,
	}, nil
}

// Points API response types. Zone properties are URLs; only the final path
// segment is meaningful.

type pointsResponse struct {
	Properties pointsProperties `json:"properties"`
}

type pointsProperties struct {
	CWA             string `json:"cwa"`
	ForecastZone    string `json:"forecastZone"`
	County          string `json:"county"`
	FireWeatherZone string `json:"fireWeatherZone"`
	GridID          string `json:"gridId"`
	GridX           int    `json:"gridX"`
	GridY           int    `json:"gridY"`
}
