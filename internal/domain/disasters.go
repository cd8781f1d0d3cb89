package domain

import (
	"fmt"
	"time"
)

// Declaration is one FEMA disaster declaration summary.
type Declaration struct {
	Number          int
	Type            string // DR, EM, FM, ...
	Title           string
	IncidentType    string
	State           string
	DesignatedArea  string
	DeclarationDate time.Time
	CloseoutDate    *time.Time
}

// emergencyTypes are the declaration types that count as emergencies:
// Major Disaster, Emergency, and Fire Management.
var emergencyTypes = map[string]bool{"DR": true, "EM": true, "FM": true}

// excludedIncidentTypes are administrative or stale incident categories that
// never count toward recent-and-active inclusion.
var excludedIncidentTypes = map[string]bool{
	"TERRORIST":        true,
	"OTHER":            true,
	"TOXIC SUBSTANCES": true,
	"DAM/LEVEE BREAK":  true,
}

// ClassifiedDisaster is a declaration that passed relevance filtering,
// annotated with its derived status.
type ClassifiedDisaster struct {
	Declaration
	DaysSince   int
	Status      string
	WebURL      string
	TrulyActive bool
}

// ClassifyDeclaration decides whether a declaration is currently relevant
// and derives its status. Inclusion: declared within 30 days, or within 90
// days with no closeout and an emergency declaration type and a
// non-excluded incident type. TrulyActive means no closeout and within 90
// days. Uses the package clock so tests can freeze time.
func ClassifyDeclaration(d Declaration) (ClassifiedDisaster, bool) {
	daysSince := int(clock.Now().Sub(d.DeclarationDate).Hours() / 24)

	veryRecent := daysSince <= 30
	recentAndActive := daysSince <= 90 && d.CloseoutDate == nil
	emergency := emergencyTypes[d.Type]
	relevantIncident := !excludedIncidentTypes[d.IncidentType]

	if !veryRecent && !(recentAndActive && emergency && relevantIncident) {
		return ClassifiedDisaster{}, false
	}

	var status string
	if d.CloseoutDate == nil {
		switch {
		case daysSince <= 30:
			status = "Active - Recent"
		case daysSince <= 90:
			status = "Active - Ongoing"
		default:
			status = "Active - Administrative"
		}
	} else {
		status = fmt.Sprintf("Closed (%d days ago)", daysSince)
	}

	return ClassifiedDisaster{
		Declaration: d,
		DaysSince:   daysSince,
		Status:      status,
		WebURL:      fmt.Sprintf("https://www.fema.gov/disaster/%d", d.Number),
		TrulyActive: d.CloseoutDate == nil && daysSince <= 90,
	}, true
}

// DisasterSummary is the per-organization aggregation of its state's
// relevant declarations.
type DisasterSummary struct {
	DisasterCount   int
	ActiveDisasters int
	RecentDisasters int
	Types           []string
	Titles          []string
	Counties        []string
	WebURLs         []string
	Numbers         []string
	Statuses        []string
	LatestDate      string

	// StatusNote is a sentinel for rows without usable state data:
	// "No State Info" when the state column is blank, "None" when the state
	// has no relevant disasters.
	StatusNote string
}

// AggregateDisasters condenses a state's classified declarations. Truly
// active declarations take priority for detail fields; closed-but-recent
// ones only contribute details when nothing is truly active.
func AggregateDisasters(disasters []ClassifiedDisaster) DisasterSummary {
	if len(disasters) == 0 {
		return DisasterSummary{StatusNote: "None"}
	}

	var active, inactive []ClassifiedDisaster
	for _, d := range disasters {
		if d.TrulyActive {
			active = append(active, d)
		} else {
			inactive = append(inactive, d)
		}
	}

	s := DisasterSummary{
		DisasterCount:   len(disasters),
		ActiveDisasters: len(active),
		RecentDisasters: len(inactive),
	}

	priority := active
	if len(priority) == 0 {
		priority = disasters
	}

	seenTypes := make(map[string]bool)
	seenCounties := make(map[string]bool)
	seenStatuses := make(map[string]bool)
	var dates []string

	for _, d := range priority {
		if d.IncidentType != "" && !seenTypes[d.IncidentType] {
			seenTypes[d.IncidentType] = true
			s.Types = append(s.Types, d.IncidentType)
		}
		if d.Title != "" && len(s.Titles) < 3 {
			s.Titles = append(s.Titles, d.Title)
		}
		if d.DesignatedArea != "" && !seenCounties[d.DesignatedArea] && len(s.Counties) < 3 {
			seenCounties[d.DesignatedArea] = true
			s.Counties = append(s.Counties, d.DesignatedArea)
		}
		if d.WebURL != "" && len(s.WebURLs) < 3 {
			s.WebURLs = append(s.WebURLs, d.WebURL)
		}
		if d.Number != 0 && len(s.Numbers) < 5 {
			s.Numbers = append(s.Numbers, fmt.Sprintf("%d", d.Number))
		}
		if d.Status != "" && !seenStatuses[d.Status] {
			seenStatuses[d.Status] = true
			s.Statuses = append(s.Statuses, d.Status)
		}
		if !d.DeclarationDate.IsZero() {
			dates = append(dates, d.DeclarationDate.Format("2006-01-02"))
		}
	}

	s.LatestDate = maxString(dates)
	return s
}
