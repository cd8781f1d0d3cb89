// Package fema wraps the OpenFEMA DisasterDeclarationsSummaries API.
package fema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// Client queries disaster declaration summaries per state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenFEMA client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://www.fema.gov/api/open/v2",
		logger:     logger,
	}
}

// DeclarationsByState fetches the 50 most recent declarations for a state,
// newest first. Declarations with unparseable dates are skipped, matching
// the relevance filter's tolerance for dirty upstream data.
func (c *Client) DeclarationsByState(ctx context.Context, state string) ([]domain.Declaration, error) {
	params := url.Values{
		"$filter":  {fmt.Sprintf("state eq '%s'", strings.ToUpper(state))},
		"$orderby": {"declarationDate desc"},
		"$top":     {"50"},
	}
	fullURL := fmt.Sprintf("%s/DisasterDeclarationsSummaries?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fema request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fema API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	declarations := make([]domain.Declaration, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		declDate, ok := parseDate(s.DeclarationDate)
		if !ok {
			c.logger.Debug("skipping declaration with invalid date",
				"disaster_number", s.DisasterNumber,
				"declaration_date", s.DeclarationDate,
			)
			continue
		}

		d := domain.Declaration{
			Number:          s.DisasterNumber,
			Type:            strings.ToUpper(s.DeclarationType),
			Title:           s.DeclarationTitle,
			IncidentType:    strings.ToUpper(s.IncidentType),
			State:           s.State,
			DesignatedArea:  s.DesignatedArea,
			DeclarationDate: declDate,
		}
		if closeout, ok := parseDate(s.DisasterCloseoutDate); ok {
			d.CloseoutDate = &closeout
		}
		declarations = append(declarations, d)
	}

	return declarations, nil
}

// parseDate reads the date portion of an OpenFEMA timestamp
// ("2026-08-01T00:00:00.000Z" → 2026-08-01).
func parseDate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OpenFEMA response types.

type response struct {
	Summaries []summary `json:"DisasterDeclarationsSummaries"`
}

type summary struct {
	DisasterNumber       int    `json:"disasterNumber"`
	DeclarationType      string `json:"declarationType"`
	DeclarationTitle     string `json:"declarationTitle"`
	IncidentType         string `json:"incidentType"`
	DeclarationDate      string `json:"declarationDate"`
	State                string `json:"state"`
	DesignatedArea       string `json:"designatedArea"`
	DisasterCloseoutDate string `json:"disasterCloseoutDate"`
}
