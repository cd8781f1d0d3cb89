package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// ActiveAlerts fetches every currently active alert from the CAP feed and
// flattens the features into domain alerts.
func (c *Client) ActiveAlerts(ctx context.Context) ([]domain.Alert, error) {
	fullURL := c.baseURL + "/alerts/active"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alerts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alerts API error: status %d: %s", resp.StatusCode, body)
	}

	var r alertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(r.Features))
	for _, f := range r.Features {
		p := f.Properties
		alerts = append(alerts, domain.Alert{
			ID:          p.ID,
			Event:       p.Event,
			Severity:    valueOr(p.Severity, "Unknown"),
			Certainty:   p.Certainty,
			Urgency:     p.Urgency,
			Headline:    p.Headline,
			Description: p.Description,
			Instruction: p.Instruction,
			AreaDesc:    p.AreaDesc,
			SenderName:  p.SenderName,
			Effective:   p.Effective,
			Expires:     p.Expires,
			Onset:       p.Onset,
			Ends:        p.Ends,
			Status:      p.Status,
			MessageType: p.MessageType,
			Category:    p.Category,
			Response:    p.Response,
			Web:         p.Web,
			UGCCodes:    p.Geocode.UGC,
		})
	}

	c.logger.Info("fetched active alerts", "count", len(alerts))
	return alerts, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Alerts API response types.

type alertsResponse struct {
	Features []alertFeature `json:"features"`
}

type alertFeature struct {
	Properties alertProperties `json:"properties"`
}

type alertProperties struct {
	ID          string       `json:"id"`
	Event       string       `json:"event"`
	Severity    string       `json:"severity"`
	Certainty   string       `json:"certainty"`
	Urgency     string       `json:"urgency"`
	Headline    string       `json:"headline"`
	Description string       `json:"description"`
	Instruction string       `json:"instruction"`
	AreaDesc    string       `json:"areaDesc"`
	SenderName  string       `json:"senderName"`
	Effective   string       `json:"effective"`
	Expires     string       `json:"expires"`
	Onset       string       `json:"onset"`
	Ends        string       `json:"ends"`
	Status      string       `json:"status"`
	MessageType string       `json:"messageType"`
	Category    string       `json:"category"`
	Response    string       `json:"response"`
	Web         string       `json:"web"`
	Geocode     alertGeocode `json:"geocode"`
}

type alertGeocode struct {
	UGC []string `json:"UGC"`
}
