// Package googlemaps implements domain.Geocoder against the Google Geocoding
// API. It is the paid fallback tier: enabled only when an API key is
// configured, and probed with a canary query before use.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// Client implements domain.Geocoder using the geocode/json endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Google Maps geocoding client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://maps.googleapis.com/maps/api/geocode",
		logger:     logger,
	}
}

// Geocode resolves a free-text address. ZERO_RESULTS returns found=false
// with no error; any other non-OK API status is a service error.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Point, bool, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}
	fullURL := fmt.Sprintf("%s/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("google maps request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Point{}, false, fmt.Errorf("google maps API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.Point{}, false, fmt.Errorf("decode response: %w", err)
	}

	switch r.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Point{}, false, nil
	default:
		return domain.Point{}, false, fmt.Errorf("google maps API status %q: %s", r.Status, r.ErrorMessage)
	}

	if len(r.Results) == 0 {
		return domain.Point{}, false, nil
	}

	loc := r.Results[0].Geometry.Location
	return domain.Point{Lat: loc.Lat, Lon: loc.Lng}, true, nil
}

// Google Geocoding API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []result `json:"results"`
}

type result struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
