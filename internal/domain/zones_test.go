package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimZonePath(t *testing.T) {
	assert.Equal(t, "DCZ001", TrimZonePath("zones/forecast/DCZ001"))
	assert.Equal(t, "DCC001", TrimZonePath("https://api.weather.gov/zones/county/DCC001"))
	assert.Equal(t, "LWX", TrimZonePath("LWX"))
	assert.Equal(t, "", TrimZonePath(""))
}

func TestZoneSet_BestRegion(t *testing.T) {
	t.Run("forecast zone preferred", func(t *testing.T) {
		z := ZoneSet{ForecastZone: "DCZ001", CWAOffice: "LWX"}
		region, ok := z.BestRegion()
		assert.True(t, ok)
		assert.Equal(t, "DCZ001", region)
	})

	t.Run("cwa office fallback", func(t *testing.T) {
		z := ZoneSet{CWAOffice: "LWX"}
		region, ok := z.BestRegion()
		assert.True(t, ok)
		assert.Equal(t, "LWX", region)
	})

	t.Run("empty set", func(t *testing.T) {
		_, ok := ZoneSet{}.BestRegion()
		assert.False(t, ok)
	})
}

func TestZoneSet_Codes(t *testing.T) {
	z := ZoneSet{
		ForecastZone: "DCZ001",
		CWAOffice:    "LWX",
		CountyZone:   "DCC001",
		FireZone:     "DCZ001", // duplicate of forecast zone
	}
	assert.Equal(t, []string{"DCZ001", "LWX", "DCC001"}, z.Codes())
	assert.Empty(t, ZoneSet{}.Codes())
}

func TestZoneSet_IsEmpty(t *testing.T) {
	assert.True(t, ZoneSet{}.IsEmpty())
	assert.False(t, ZoneSet{CWAOffice: "LWX"}.IsEmpty())
	assert.False(t, ZoneSet{GridID: "LWX", GridX: 96, GridY: 70}.IsEmpty())
}

func TestIsZoneSentinel(t *testing.T) {
	assert.True(t, IsZoneSentinel(""))
	assert.True(t, IsZoneSentinel(ZoneNotApplicable))
	assert.True(t, IsZoneSentinel(ZoneNotFound))
	assert.False(t, IsZoneSentinel("LWX"))
}
