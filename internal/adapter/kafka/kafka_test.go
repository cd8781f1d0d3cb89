package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 10, 0, 0, time.UTC)
	rec := domain.OrgRecord{
		SourceID: "org-1",
		Name:     "Acme Relief",
		State:    "IL",
		Geocode: domain.GeocodeResult{
			Point:  domain.Point{Lat: 39.7817, Lon: -89.6501},
			Method: domain.MethodFreeFull,
			Status: domain.StatusSuccess,
		},
		Zones:       domain.ZoneSet{CWAOffice: "ILX", ForecastZone: "ILZ051"},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(&rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("org-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"identity":"org-1"`)
	assert.Contains(t, string(msg.Value), `"cwa_office":"ILX"`)
	assert.Contains(t, string(msg.Value), `"status":"Success"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "geocoding_status", msg.Headers[0].Key)
	assert.Equal(t, []byte("Success"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_DerivedIdentityKey(t *testing.T) {
	rec := domain.OrgRecord{Name: "Acme Relief", City: "Springfield", State: "IL"}

	msg, err := serializeToMessage(&rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Identity(), string(msg.Key))
}
