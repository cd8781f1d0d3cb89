package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Source column names expected in the Salesforce organization export.
const (
	ColOrgID  = "Organization ID"
	ColName   = "Organization Name"
	ColStreet = "Primary Address Street"
	ColCity   = "Primary Address City"
	ColState  = "Primary Address State/Province"
	ColZip    = "Primary Address Zip/Postal Code"
)

// Method identifies which geocoding strategy produced a result. The values
// are stable CSV strings consumed downstream; do not change them.
type Method string

const (
	MethodFreeFull       Method = "Free Service (Full)"
	MethodFreeSimplified Method = "Free Service (Simplified)"
	MethodPaidFull       Method = "Google Maps (Full)"
	MethodPaidSimplified Method = "Google Maps (Simplified)"
	MethodFailed         Method = "Failed"
)

// Status is the row-level geocoding outcome.
type Status string

const (
	// StatusNone marks a row not yet attempted. It is the zero value and
	// never appears in output.
	StatusNone Status = ""

	StatusSuccess      Status = "Success"
	StatusFailed       Status = "Failed"
	StatusEmptyAddress Status = "Empty Address"

	// StatusPrevious marks a row short-circuited by the incremental index:
	// a prior run already resolved this identity.
	StatusPrevious Status = "Previously Geocoded"
)

// Point is a WGS-84 latitude/longitude coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeResult is the outcome of resolving one address. Coordinates are
// meaningful only when Status is StatusSuccess; Point carries both values or
// neither, never one without the other.
type GeocodeResult struct {
	Point  Point  `json:"point"`
	Method Method `json:"method"`
	Status Status `json:"status"`
}

// HasCoordinates reports whether the result carries usable coordinates.
func (r GeocodeResult) HasCoordinates() bool {
	return r.Status == StatusSuccess
}

// Complete reports whether the result is fully populated, used to decide
// whether a row's pre-existing geocoding data can be reused as-is.
func (r GeocodeResult) Complete() bool {
	return r.Status != StatusNone && r.Method != ""
}

// OrgRecord is one organization row plus its enrichment state. Fields holds
// every source column verbatim so output preserves columns this tool does
// not interpret.
type OrgRecord struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string

	// SourceID is the explicit ID column value, when the export has one.
	SourceID string

	// Fields preserves all source columns by header name.
	Fields map[string]string

	Geocode GeocodeResult
	Zones   ZoneSet

	// ZoneLookupDone distinguishes "looked and found nothing" from "never
	// looked": it is set once a zone lookup has been attempted.
	ZoneLookupDone bool

	Alerts    AlertSummary
	Disasters DisasterSummary
	Risk      RiskAssessment

	ProcessedAt time.Time
}

// Identity returns the stable incremental-matching key for a record: the
// source ID column when present, otherwise a deterministic SHA-256 over the
// lower-cased name and address fields. Identical rows always produce the
// same identity regardless of which run computed it.
func (r *OrgRecord) Identity() string {
	if id := strings.TrimSpace(r.SourceID); id != "" {
		return id
	}
	input := strings.ToLower(fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.TrimSpace(r.Name),
		strings.TrimSpace(r.Street),
		strings.TrimSpace(r.City),
		strings.TrimSpace(r.State),
		strings.TrimSpace(r.Zip),
	))
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// AdoptPrior copies geocoding and zone fields into records from prior rows
// whose status was Success, matched by identity. Failed or unmatched prior
// rows leave the current record untouched. Returns the number of records
// updated.
func AdoptPrior(records []OrgRecord, prior []OrgRecord) int {
	byIdentity := make(map[string]*OrgRecord, len(prior))
	for i := range prior {
		p := &prior[i]
		if p.Geocode.Status == StatusSuccess {
			byIdentity[p.Identity()] = p
		}
	}

	adopted := 0
	for i := range records {
		p, ok := byIdentity[records[i].Identity()]
		if !ok {
			continue
		}
		records[i].Geocode = p.Geocode
		records[i].Zones = p.Zones
		records[i].ZoneLookupDone = p.ZoneLookupDone
		adopted++
	}
	return adopted
}
