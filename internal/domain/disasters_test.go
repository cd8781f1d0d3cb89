package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(frozenNow))
	t.Cleanup(func() { SetClock(nil) })
}

func daysAgo(n int) time.Time {
	return frozenNow.AddDate(0, 0, -n)
}

func TestClassifyDeclaration_VeryRecentAlwaysIncluded(t *testing.T) {
	freezeClock(t)

	// Excluded incident type and non-emergency declaration type, but within
	// 30 days exactly is still included.
	d := Declaration{
		Number:          4801,
		Type:            "FS",
		IncidentType:    "OTHER",
		DeclarationDate: daysAgo(10),
	}

	c, ok := ClassifyDeclaration(d)
	require.True(t, ok)
	assert.Equal(t, "Active - Recent", c.Status)
	assert.True(t, c.TrulyActive)
	assert.Equal(t, 10, c.DaysSince)
	assert.Equal(t, "https://www.fema.gov/disaster/4801", c.WebURL)
}

func TestClassifyDeclaration_RecentActiveEmergency(t *testing.T) {
	freezeClock(t)

	d := Declaration{
		Number:          4802,
		Type:            "DR",
		IncidentType:    "FLOOD",
		DeclarationDate: daysAgo(60),
	}

	c, ok := ClassifyDeclaration(d)
	require.True(t, ok)
	assert.Equal(t, "Active - Ongoing", c.Status)
	assert.True(t, c.TrulyActive)
}

func TestClassifyDeclaration_Excluded(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		name string
		d    Declaration
	}{
		{
			name: "too old",
			d:    Declaration{Type: "DR", IncidentType: "FLOOD", DeclarationDate: daysAgo(120)},
		},
		{
			name: "closed out past 30 days",
			d: Declaration{
				Type: "DR", IncidentType: "FLOOD",
				DeclarationDate: daysAgo(60),
				CloseoutDate:    ptr(daysAgo(5)),
			},
		},
		{
			name: "non-emergency type past 30 days",
			d:    Declaration{Type: "FS", IncidentType: "FLOOD", DeclarationDate: daysAgo(60)},
		},
		{
			name: "excluded incident type past 30 days",
			d:    Declaration{Type: "DR", IncidentType: "TOXIC SUBSTANCES", DeclarationDate: daysAgo(60)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ClassifyDeclaration(tt.d)
			assert.False(t, ok)
		})
	}
}

func TestClassifyDeclaration_Boundaries(t *testing.T) {
	freezeClock(t)

	t.Run("exactly 30 days is very recent", func(t *testing.T) {
		c, ok := ClassifyDeclaration(Declaration{Type: "FS", IncidentType: "OTHER", DeclarationDate: daysAgo(30)})
		require.True(t, ok)
		assert.Equal(t, "Active - Recent", c.Status)
	})

	t.Run("exactly 90 days still active", func(t *testing.T) {
		c, ok := ClassifyDeclaration(Declaration{Type: "EM", IncidentType: "HURRICANE", DeclarationDate: daysAgo(90)})
		require.True(t, ok)
		assert.Equal(t, "Active - Ongoing", c.Status)
		assert.True(t, c.TrulyActive)
	})

	t.Run("91 days excluded", func(t *testing.T) {
		_, ok := ClassifyDeclaration(Declaration{Type: "EM", IncidentType: "HURRICANE", DeclarationDate: daysAgo(91)})
		assert.False(t, ok)
	})
}

func TestClassifyDeclaration_ClosedStatus(t *testing.T) {
	freezeClock(t)

	d := Declaration{
		Number:          4803,
		Type:            "DR",
		IncidentType:    "FIRE",
		DeclarationDate: daysAgo(20),
		CloseoutDate:    ptr(daysAgo(2)),
	}

	c, ok := ClassifyDeclaration(d)
	require.True(t, ok) // within 30 days, included despite closeout
	assert.Equal(t, "Closed (20 days ago)", c.Status)
	assert.False(t, c.TrulyActive)
}

func TestAggregateDisasters_Empty(t *testing.T) {
	s := AggregateDisasters(nil)
	assert.Equal(t, 0, s.DisasterCount)
	assert.Equal(t, "None", s.StatusNote)
}

func TestAggregateDisasters_ActivePrioritized(t *testing.T) {
	freezeClock(t)

	active := ClassifiedDisaster{
		Declaration: Declaration{Number: 1, Title: "Severe Flooding", IncidentType: "FLOOD",
			DesignatedArea: "Travis (County)", DeclarationDate: daysAgo(10)},
		Status: "Active - Recent", TrulyActive: true,
		WebURL: "https://www.fema.gov/disaster/1",
	}
	closed := ClassifiedDisaster{
		Declaration: Declaration{Number: 2, Title: "Old Fire", IncidentType: "FIRE",
			DesignatedArea: "Hays (County)", DeclarationDate: daysAgo(25)},
		Status: "Closed (25 days ago)", TrulyActive: false,
		WebURL: "https://www.fema.gov/disaster/2",
	}

	s := AggregateDisasters([]ClassifiedDisaster{closed, active})

	assert.Equal(t, 2, s.DisasterCount)
	assert.Equal(t, 1, s.ActiveDisasters)
	assert.Equal(t, 1, s.RecentDisasters)
	// Detail fields come only from the truly-active declaration.
	assert.Equal(t, []string{"FLOOD"}, s.Types)
	assert.Equal(t, []string{"Severe Flooding"}, s.Titles)
	assert.Equal(t, []string{"1"}, s.Numbers)
	assert.Equal(t, daysAgo(10).Format("2006-01-02"), s.LatestDate)
}

func TestAggregateDisasters_FallsBackToAllWhenNoneActive(t *testing.T) {
	freezeClock(t)

	closed := ClassifiedDisaster{
		Declaration: Declaration{Number: 7, Title: "Old Fire", IncidentType: "FIRE",
			DeclarationDate: daysAgo(25)},
		Status: "Closed (25 days ago)",
	}

	s := AggregateDisasters([]ClassifiedDisaster{closed})

	assert.Equal(t, 0, s.ActiveDisasters)
	assert.Equal(t, 1, s.RecentDisasters)
	assert.Equal(t, []string{"FIRE"}, s.Types)
	assert.Equal(t, []string{"Closed (25 days ago)"}, s.Statuses)
}

func ptr(t time.Time) *time.Time { return &t }
