package domain

import "strings"

// Zone output sentinels. "N/A" means no lookup was attempted because the row
// never geocoded; "Not Found" means the lookup ran and returned nothing.
const (
	ZoneNotApplicable = "N/A"
	ZoneNotFound      = "Not Found"
)

// ZoneSet holds the National Weather Service identifiers returned by a
// point lookup. Empty string (or zero for grid coordinates) means the
// upstream response did not carry that property.
type ZoneSet struct {
	ForecastZone string `json:"forecast_zone,omitempty"`
	CWAOffice    string `json:"cwa_office,omitempty"`
	CountyZone   string `json:"county_zone,omitempty"`
	FireZone     string `json:"fire_zone,omitempty"`
	GridID       string `json:"grid_id,omitempty"`
	GridX        int    `json:"grid_x,omitempty"`
	GridY        int    `json:"grid_y,omitempty"`
}

// IsEmpty reports whether the lookup returned no identifiers at all.
func (z ZoneSet) IsEmpty() bool {
	return z.ForecastZone == "" && z.CWAOffice == "" && z.CountyZone == "" &&
		z.FireZone == "" && z.GridID == ""
}

// BestRegion returns the single most useful zone code for callers that want
// one representative value: the forecast zone when present, else the CWA
// office code. The second return is false when neither exists.
func (z ZoneSet) BestRegion() (string, bool) {
	if z.ForecastZone != "" {
		return z.ForecastZone, true
	}
	if z.CWAOffice != "" {
		return z.CWAOffice, true
	}
	return "", false
}

// Codes returns every distinct zone identifier in the set, used as match
// targets for alert processing.
func (z ZoneSet) Codes() []string {
	var codes []string
	seen := make(map[string]bool)
	for _, c := range []string{z.ForecastZone, z.CWAOffice, z.CountyZone, z.FireZone} {
		if c != "" && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	return codes
}

// TrimZonePath reduces a hierarchical zone identifier to its final path
// segment: "zones/forecast/DCZ001" → "DCZ001". Plain identifiers pass
// through unchanged.
func TrimZonePath(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// IsZoneSentinel reports whether a zone column value is one of the output
// sentinels rather than a real code.
func IsZoneSentinel(v string) bool {
	return v == "" || v == ZoneNotApplicable || v == ZoneNotFound
}
