package fema

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

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDeclarationsByState_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/DisasterDeclarationsSummaries", r.URL.Path)
		assert.Equal(t, "state eq 'TX'", r.URL.Query().Get("$filter"))
		assert.Equal(t, "declarationDate desc", r.URL.Query().Get("$orderby"))
		assert.Equal(t, "50", r.URL.Query().Get("$top"))

		require.NoError(t, json.NewEncoder(w).Encode(response{
			Summaries: []summary{
				{
					DisasterNumber:   4801,
					DeclarationType:  "DR",
					DeclarationTitle: "Severe Storms and Flooding",
					IncidentType:     "Flood",
					DeclarationDate:  "2026-08-01T00:00:00.000Z",
					State:            "TX",
					DesignatedArea:   "Travis (County)",
				},
				{
					DisasterNumber:       4750,
					DeclarationType:      "FM",
					DeclarationTitle:     "Hill Country Fire",
					IncidentType:         "Fire",
					DeclarationDate:      "2026-05-10T00:00:00.000Z",
					State:                "TX",
					DisasterCloseoutDate: "2026-07-15T00:00:00.000Z",
				},
				{
					DisasterNumber:  9999,
					DeclarationDate: "garbage", // skipped
				},
			},
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	declarations, err := c.DeclarationsByState(context.Background(), "tx")
	require.NoError(t, err)
	require.Len(t, declarations, 2)

	assert.Equal(t, 4801, declarations[0].Number)
	assert.Equal(t, "DR", declarations[0].Type)
	assert.Equal(t, "FLOOD", declarations[0].IncidentType)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), declarations[0].DeclarationDate)
	assert.Nil(t, declarations[0].CloseoutDate)

	require.NotNil(t, declarations[1].CloseoutDate)
	assert.Equal(t, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), *declarations[1].CloseoutDate)
}

func TestDeclarationsByState_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.DeclarationsByState(context.Background(), "TX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate("2026-08-01T00:00:00.000Z")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), d)

	_, ok = parseDate("")
	assert.False(t, ok)

	_, ok = parseDate("08/01/2026")
	assert.False(t, ok)
}
