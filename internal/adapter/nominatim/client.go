// Package nominatim implements domain.Geocoder against the OSM Nominatim
// search API. Nominatim is the preferred free backend; its fair-use policy
// requires a descriptive User-Agent and at most one request per second,
// which the pipeline's rate limiter enforces.
package nominatim

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// Client implements domain.Geocoder using the Nominatim search endpoint.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Nominatim client with strict TLS verification.
func NewClient(userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(userAgent, timeout, logger, false)
}

// NewInsecureClient creates a Nominatim client that skips TLS certificate
// verification. Some corporate proxies re-sign TLS traffic with certificates
// the host does not trust; this variant is probed only after the strict one
// fails.
func NewInsecureClient(userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(userAgent, timeout, logger, true)
}

func newClient(userAgent string, timeout time.Duration, logger *slog.Logger, insecure bool) *Client {
	transport := http.DefaultTransport
	if insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // deliberate fallback tier
		}
	}
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: "https://nominatim.openstreetmap.org",
		logger:  logger,
	}
}

// Geocode resolves a free-text address to coordinates. An empty result set
// returns found=false with no error.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Point, bool, error) {
	params := url.Values{
		"q":      {address},
		"format": {"json"},
		"limit":  {"1"},
	}
	fullURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Point{}, false, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Point{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.Point{}, false, nil
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.Point{}, false, fmt.Errorf("malformed coordinates in response: lat=%q lon=%q", places[0].Lat, places[0].Lon)
	}

	return domain.Point{Lat: lat, Lon: lon}, true, nil
}

// Nominatim returns coordinates as JSON strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
