package nws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "org-hazard-etl-test/1.0"

func testClient(baseURL string) *Client {
	return &Client{
		userAgent:  testUserAgent,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Coordinates templated at 4 decimal places.
		assert.Equal(t, "/points/38.8977,-77.0365", r.URL.Path)
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		require.NoError(t, json.NewEncoder(w).Encode(pointsResponse{
			Properties: pointsProperties{
				CWA:             "LWX",
				ForecastZone:    "https://api.weather.gov/zones/forecast/DCZ001",
				County:          "https://api.weather.gov/zones/county/DCC001",
				FireWeatherZone: "https://api.weather.gov/zones/fire/DCZ001",
				GridID:          "LWX",
				GridX:           96,
				GridY:           70,
			},
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	zones, err := c.Lookup(context.Background(), 38.89772, -77.03654)
	require.NoError(t, err)

	assert.Equal(t, "DCZ001", zones.ForecastZone)
	assert.Equal(t, "LWX", zones.CWAOffice)
	assert.Equal(t, "DCC001", zones.CountyZone)
	assert.Equal(t, "DCZ001", zones.FireZone)
	assert.Equal(t, "LWX", zones.GridID)
	assert.Equal(t, 96, zones.GridX)
	assert.Equal(t, 70, zones.GridY)

	region, ok := zones.BestRegion()
	assert.True(t, ok)
	assert.Equal(t, "DCZ001", region)
}

func TestLookup_PartialProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(pointsResponse{
			Properties: pointsProperties{CWA: "LWX"},
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	zones, err := c.Lookup(context.Background(), 38.8977, -77.0365)
	require.NoError(t, err)

	assert.Equal(t, "LWX", zones.CWAOffice)
	assert.Empty(t, zones.ForecastZone)
	assert.False(t, zones.IsEmpty())
}

func TestLookup_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Unable to provide data for requested point"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Lookup(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestActiveAlerts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/active", r.URL.Path)

		require.NoError(t, json.NewEncoder(w).Encode(alertsResponse{
			Features: []alertFeature{
				{Properties: alertProperties{
					ID:         "urn:oid:2.49.0.1.840.0.abc",
					Event:      "Severe Thunderstorm Warning",
					Severity:   "Severe",
					Urgency:    "Immediate",
					Certainty:  "Observed",
					AreaDesc:   "District of Columbia",
					SenderName: "NWS Baltimore MD/Washington DC",
					Geocode:    alertGeocode{UGC: []string{"DCZ001", "MDZ004"}},
				}},
				{Properties: alertProperties{
					ID:    "urn:oid:2.49.0.1.840.0.def",
					Event: "Flood Watch",
					// Missing severity defaults to "Unknown".
				}},
			},
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	alerts, err := c.ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "Severe Thunderstorm Warning", alerts[0].Event)
	assert.Equal(t, []string{"DCZ001", "MDZ004"}, alerts[0].UGCCodes)
	assert.Equal(t, "Unknown", alerts[1].Severity)
}

func TestActiveAlerts_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ActiveAlerts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
