package domain

import "fmt"

// Risk levels, weakest to strongest.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

var riskRank = map[string]int{RiskLow: 0, RiskModerate: 1, RiskHigh: 2, RiskCritical: 3}

// RiskAssessment is the combined weather-alert + FEMA-disaster risk for one
// organization.
type RiskAssessment struct {
	Level   string
	Factors []string
}

// AssessRisk combines alert severity and disaster activity into a single
// level. Extreme alerts force Critical, severe alerts and active FEMA
// disasters force at least High, advisories and recent-but-closed disasters
// at least Moderate. Recent disasters only count when nothing is truly
// active.
func AssessRisk(alerts AlertSummary, disasters DisasterSummary) RiskAssessment {
	level := RiskLow
	var factors []string

	raise := func(to string) {
		if riskRank[to] > riskRank[level] {
			level = to
		}
	}

	if alerts.HasActiveAlerts {
		switch alerts.MaxSeverity {
		case "Extreme":
			factors = append(factors, "Extreme Weather Alert")
			raise(RiskCritical)
		case "Severe":
			factors = append(factors, "Severe Weather Alert")
			raise(RiskHigh)
		case "Moderate", "Minor":
			factors = append(factors, "Weather Advisory")
			raise(RiskModerate)
		}
	}

	if disasters.ActiveDisasters > 0 {
		factors = append(factors, fmt.Sprintf("Active FEMA Disaster (%d)", disasters.ActiveDisasters))
		raise(RiskHigh)
	} else if disasters.RecentDisasters > 0 {
		factors = append(factors, fmt.Sprintf("Recent FEMA Disaster (%d)", disasters.RecentDisasters))
		raise(RiskModerate)
	}

	return RiskAssessment{Level: level, Factors: factors}
}
