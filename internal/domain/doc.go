// Package domain models organization records and their hazard enrichment.
//
// # Data Source
//
// Organization rows originate from Salesforce "Organization" report exports:
// CSV files with an "Organization Name" column plus the "Primary Address"
// street/city/state/zip columns. Export encoding is inconsistent (UTF-8,
// cp1252, or Latin-1 depending on who ran the report), which is why the CSV
// reader carries an encoding fallback chain.
//
// # Address Conventions
//
// Full address:
//
//	Non-empty street, city, state, and zip fields joined with ", ".
//	Street values may contain embedded newlines (Salesforce multi-line
//	fields); these are collapsed to single spaces before joining.
//
// Simplified address:
//
//	Geocoding services frequently fail on unit designators. The simplified
//	variant strips comma-anchored sub-strings such as "Suite 200", "Ste. 4",
//	"3rd Floor", "Room 12", "#5B", "Apt. 9", and "Unit C", then collapses
//	the leftover commas and whitespace. Simplification is idempotent.
//
// # Geocoding Methods
//
// Each successfully geocoded row records which strategy produced its
// coordinates. The method strings are stable CSV values consumed downstream:
//
//	"Free Service (Full)"        primary backend, full address
//	"Free Service (Simplified)"  primary backend, simplified address
//	"Google Maps (Full)"         paid backend, full address
//	"Google Maps (Simplified)"   paid backend, simplified address
//	"Failed"                     every strategy exhausted
//
// # NWS Zones
//
// Coordinates map to National Weather Service identifiers via the
// api.weather.gov points endpoint: the County Warning Area (CWA) office code
// (3 letters, e.g. "LWX"), forecast zone, county zone, and fire weather zone
// (UGC codes, e.g. "DCZ001"), and the forecast grid cell. Zone identifiers
// arrive as URL paths ("zones/forecast/DCZ001") and are reduced to their
// final path segment.
//
// Two sentinel values appear in zone output columns and must not be
// conflated: "N/A" means no lookup was attempted (geocoding failed), while
// "Not Found" means the lookup ran and returned nothing.
//
// # Identity
//
// Incremental runs need a stable per-organization key. When the source
// provides an ID column it is used as-is; otherwise the identity is a
// deterministic SHA-256 hash of the lower-cased name and address fields.
// Reprocessing the same row always yields the same identity, so index
// upserts are idempotent.
//
// # Hazard Severity
//
// Alert severity, urgency, and certainty follow the CAP enumerations used by
// the NWS alerts feed and are ranked for per-organization maximums:
//
//	Severity:  Unknown < Minor < Moderate < Severe < Extreme
//	Urgency:   Unknown < Future < Expected < Immediate
//	Certainty: Unknown < Unlikely < Possible < Likely < Observed
//
// FEMA declarations are classified by age and closeout: declared within 30
// days is always relevant; within 90 days with no closeout date counts as
// truly active when the declaration type is DR, EM, or FM and the incident
// type is not administrative.
package domain
