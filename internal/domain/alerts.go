package domain

import "strings"

// Alert is one active NWS alert, flattened from the CAP feed's properties.
type Alert struct {
	ID          string
	Event       string
	Severity    string
	Certainty   string
	Urgency     string
	Headline    string
	Description string
	Instruction string
	AreaDesc    string
	SenderName  string
	Effective   string
	Expires     string
	Onset       string
	Ends        string
	Status      string
	MessageType string
	Category    string
	Response    string
	Web         string
	UGCCodes    []string
}

// CAP enumeration ranks for per-organization maximums. Values absent from a
// table rank as 0.
var (
	severityRank  = map[string]int{"Unknown": 0, "Minor": 1, "Moderate": 2, "Severe": 3, "Extreme": 4}
	urgencyRank   = map[string]int{"Unknown": 0, "Future": 1, "Expected": 2, "Immediate": 3}
	certaintyRank = map[string]int{"Unknown": 0, "Unlikely": 1, "Possible": 2, "Likely": 3, "Observed": 4}
)

// MatchAlertsToZones groups alerts by the target zone codes they apply to.
//
// Matching is a two-step heuristic whose exact behavior downstream consumers
// depend on. Step one is exact UGC code membership. Step two runs only when
// step one matched nothing for the alert: 3-letter targets (CWA office codes
// like "LWX") substring-match against the upper-cased sender name, and
// longer targets substring-match against the upper-cased area description.
// The fallback can produce false positives (e.g. an office code appearing
// inside an unrelated sender name); that is accepted, not a bug to fix.
func MatchAlertsToZones(alerts []Alert, targetZones map[string]bool) map[string][]Alert {
	zoneAlerts := make(map[string][]Alert)

	for i := range alerts {
		alert := &alerts[i]

		matched := make(map[string]bool)
		for _, ugc := range alert.UGCCodes {
			if targetZones[ugc] {
				matched[ugc] = true
			}
		}

		if len(matched) == 0 {
			areaUpper := strings.ToUpper(alert.AreaDesc)
			senderUpper := strings.ToUpper(alert.SenderName)
			for zone := range targetZones {
				if len(zone) == 3 {
					if strings.Contains(senderUpper, strings.ToUpper(zone)) {
						matched[zone] = true
					}
				} else if strings.Contains(areaUpper, strings.ToUpper(zone)) {
					matched[zone] = true
				}
			}
		}

		for zone := range matched {
			zoneAlerts[zone] = append(zoneAlerts[zone], *alert)
		}
	}

	return zoneAlerts
}

// AlertSummary is the per-organization aggregation of its matched alerts.
type AlertSummary struct {
	HasActiveAlerts   bool
	AlertCount        int
	MaxSeverity       string
	Events            []string
	Headlines         []string
	Descriptions      []string
	Instructions      []string
	EarliestEffective string
	LatestExpires     string
	MaxUrgency        string
	MaxCertainty      string
	WebURLs           []string
	AlertIDs          []string
}

// AggregateAlerts condenses a zone's matched alerts into summary fields.
// Detail lists are capped (3 headlines, 2 descriptions/instructions
// truncated at 200 characters, 3 URLs, 5 IDs) to keep CSV cells readable.
// No alerts yields HasActiveAlerts=false with MaxSeverity "None".
func AggregateAlerts(alerts []Alert) AlertSummary {
	if len(alerts) == 0 {
		return AlertSummary{MaxSeverity: "None"}
	}

	s := AlertSummary{
		HasActiveAlerts: true,
		AlertCount:      len(alerts),
		MaxSeverity:     "Unknown",
		MaxUrgency:      "Unknown",
		MaxCertainty:    "Unknown",
	}

	var effectives, expires []string
	seenEvents := make(map[string]bool)

	for _, a := range alerts {
		if a.Event != "" && !seenEvents[a.Event] {
			seenEvents[a.Event] = true
			s.Events = append(s.Events, a.Event)
		}
		if a.Headline != "" && len(s.Headlines) < 3 {
			s.Headlines = append(s.Headlines, a.Headline)
		}
		if a.Description != "" && len(s.Descriptions) < 2 {
			s.Descriptions = append(s.Descriptions, truncate(a.Description, 200))
		}
		if a.Instruction != "" && len(s.Instructions) < 2 {
			s.Instructions = append(s.Instructions, truncate(a.Instruction, 200))
		}
		if a.Web != "" && len(s.WebURLs) < 3 {
			s.WebURLs = append(s.WebURLs, a.Web)
		}
		if a.ID != "" && len(s.AlertIDs) < 5 {
			s.AlertIDs = append(s.AlertIDs, a.ID)
		}
		if a.Effective != "" {
			effectives = append(effectives, a.Effective)
		}
		if a.Expires != "" {
			expires = append(expires, a.Expires)
		}

		if severityRank[a.Severity] > severityRank[s.MaxSeverity] {
			s.MaxSeverity = a.Severity
		}
		if urgencyRank[a.Urgency] > urgencyRank[s.MaxUrgency] {
			s.MaxUrgency = a.Urgency
		}
		if certaintyRank[a.Certainty] > certaintyRank[s.MaxCertainty] {
			s.MaxCertainty = a.Certainty
		}
	}

	// RFC 3339 timestamps order lexicographically, so string min/max works.
	s.EarliestEffective = minString(effectives)
	s.LatestExpires = maxString(expires)

	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func minString(values []string) string {
	out := ""
	for _, v := range values {
		if out == "" || v < out {
			out = v
		}
	}
	return out
}

func maxString(values []string) string {
	out := ""
	for _, v := range values {
		if v > out {
			out = v
		}
	}
	return out
}
