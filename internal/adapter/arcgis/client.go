// Package arcgis implements domain.Geocoder against the public ArcGIS World
// Geocoding Service. It needs no credential and serves as the alternate free
// backend when Nominatim cannot be reached.
package arcgis

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

// Client implements domain.Geocoder using findAddressCandidates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an ArcGIS geocoding client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer",
		logger:     logger,
	}
}

// Geocode resolves a free-text address to coordinates via the best-scoring
// candidate. An empty candidate list returns found=false with no error.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Point, bool, error) {
	params := url.Values{
		"SingleLine":   {address},
		"f":            {"json"},
		"maxLocations": {"1"},
		"outFields":    {"Match_addr"},
	}
	fullURL := fmt.Sprintf("%s/findAddressCandidates?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("arcgis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Point{}, false, fmt.Errorf("arcgis API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.Point{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(r.Candidates) == 0 {
		return domain.Point{}, false, nil
	}

	loc := r.Candidates[0].Location
	return domain.Point{Lat: loc.Y, Lon: loc.X}, true, nil
}

// ArcGIS API response types. Location uses x=lon, y=lat.

type response struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Address  string   `json:"address"`
	Location location `json:"location"`
	Score    float64  `json:"score"`
}

type location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
