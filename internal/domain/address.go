package domain

import (
	"regexp"
	"strings"
)

// unitPatterns match comma-anchored unit designators that geocoding services
// struggle with: "..., Suite 200", "..., 3rd Floor", "..., #5B", and so on.
var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i),\s*Suite\s+[^,]+`),
	regexp.MustCompile(`(?i),\s*Ste\.?\s+[^,]+`),
	regexp.MustCompile(`(?i),\s*Floor\s+[^,]+`),
	regexp.MustCompile(`(?i),\s*\d+(?:st|nd|rd|th)\s+Floor`),
	regexp.MustCompile(`(?i),\s*Room\s+[^,]+`),
	regexp.MustCompile(`(?i),\s*#[^,]+`),
	regexp.MustCompile(`(?i),\s*Apt\.?\s+[^,]+`),
	regexp.MustCompile(`(?i),\s*Unit\s+[^,]+`),
}

var (
	repeatedCommas = regexp.MustCompile(`,\s*,`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// BuildFullAddress joins the non-empty address fields of a record with ", "
// in street, city, state, zip order. Embedded newlines in the street field
// are collapsed to single spaces. Returns "" when every field is empty.
func BuildFullAddress(rec *OrgRecord) string {
	var parts []string

	street := strings.NewReplacer("\n", " ", "\r", " ").Replace(rec.Street)
	street = strings.Join(strings.Fields(street), " ")
	if street != "" {
		parts = append(parts, street)
	}
	if city := strings.TrimSpace(rec.City); city != "" {
		parts = append(parts, city)
	}
	if state := strings.TrimSpace(rec.State); state != "" {
		parts = append(parts, state)
	}
	if zip := strings.TrimSpace(rec.Zip); zip != "" {
		parts = append(parts, zip)
	}

	return strings.Join(parts, ", ")
}

// SimplifyAddress strips unit designators from an address string and
// normalizes the leftover punctuation and whitespace. Applying it twice
// yields the same result as once.
func SimplifyAddress(address string) string {
	simplified := address
	for _, p := range unitPatterns {
		simplified = p.ReplaceAllString(simplified, "")
	}
	simplified = repeatedCommas.ReplaceAllString(simplified, ",")
	simplified = whitespaceRuns.ReplaceAllString(simplified, " ")
	return strings.TrimSpace(simplified)
}
