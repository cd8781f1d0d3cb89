// Package csvio reads and writes the organization CSV files, preserving
// source columns this tool does not interpret and managing the enrichment
// columns it appends. Salesforce exports arrive in inconsistent encodings,
// so reading carries a fallback chain of decoders.
package csvio

// Geocoding enrichment columns. Latitude through CWA_Region match the
// columns downstream spreadsheets already consume; the zone columns beyond
// CWA_Region carry the full point-lookup detail.
var geocodeColumns = []string{
	"Latitude",
	"Longitude",
	"Geocoding_Status",
	"Geocoding_Method",
	"CWA_Region",
	"CWA_Office",
	"Forecast_Zone",
	"County_Zone",
	"Fire_Zone",
	"Grid_ID",
	"Grid_X",
	"Grid_Y",
}

// Alert and disaster enrichment columns, appended by the alerts batch.
var alertColumns = []string{
	"has_active_alerts",
	"alert_count",
	"max_severity",
	"alert_events",
	"alert_headlines",
	"alert_descriptions",
	"alert_instructions",
	"earliest_effective",
	"latest_expires",
	"alert_urgency_max",
	"alert_certainty_max",
	"alert_web_urls",
	"alert_ids",

	"fema_disaster_count",
	"fema_active_disasters",
	"fema_recent_disasters",
	"fema_disaster_types",
	"fema_disaster_titles",
	"fema_disaster_counties",
	"fema_disaster_urls",
	"fema_latest_declaration_date",
	"fema_disaster_numbers",
	"fema_disaster_status",

	"combined_risk_level",
	"risk_factors",
	"last_alert_check",
}

// managedColumns is every column this tool owns: stripped from the
// preserved source header on read and re-emitted from record state on write.
var managedColumns = func() map[string]bool {
	m := make(map[string]bool)
	for _, c := range geocodeColumns {
		m[c] = true
	}
	for _, c := range alertColumns {
		m[c] = true
	}
	return m
}()
