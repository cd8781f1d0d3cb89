package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// WriteGeocoded writes the table with geocoding enrichment columns
// appended, always UTF-8 regardless of the input encoding.
func WriteGeocoded(path string, table *Table) error {
	return write(path, table, false)
}

// WriteAlertEnriched writes the table with both geocoding and
// alert/disaster enrichment columns appended.
func WriteAlertEnriched(path string, table *Table) error {
	return write(path, table, true)
}

func write(path string, table *Table, withAlerts bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{}, table.Header...)
	header = append(header, geocodeColumns...)
	if withAlerts {
		header = append(header, alertColumns...)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range table.Records {
		rec := &table.Records[i]

		row := make([]string, 0, len(header))
		for _, col := range table.Header {
			row = append(row, rec.Fields[col])
		}
		row = append(row, geocodeValues(rec)...)
		if withAlerts {
			row = append(row, alertValues(rec)...)
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// geocodeValues renders the geocoding enrichment columns for one record,
// in geocodeColumns order.
func geocodeValues(rec *domain.OrgRecord) []string {
	var lat, lon string
	if rec.Geocode.HasCoordinates() {
		lat = strconv.FormatFloat(rec.Geocode.Point.Lat, 'f', 6, 64)
		lon = strconv.FormatFloat(rec.Geocode.Point.Lon, 'f', 6, 64)
	}

	region := ""
	if best, ok := rec.Zones.BestRegion(); ok {
		region = best
	}

	return []string{
		lat,
		lon,
		string(rec.Geocode.Status),
		string(rec.Geocode.Method),
		zoneValue(rec, region),
		zoneValue(rec, rec.Zones.CWAOffice),
		zoneValue(rec, rec.Zones.ForecastZone),
		zoneValue(rec, rec.Zones.CountyZone),
		zoneValue(rec, rec.Zones.FireZone),
		zoneValue(rec, rec.Zones.GridID),
		gridValue(rec, rec.Zones.GridX),
		gridValue(rec, rec.Zones.GridY),
	}
}

// zoneValue applies the zone sentinels: "N/A" when no lookup was attempted
// (geocoding failed), "Not Found" when the lookup ran and this identifier
// was absent.
func zoneValue(rec *domain.OrgRecord, v string) string {
	if v != "" {
		return v
	}
	switch {
	case rec.Geocode.Status == domain.StatusFailed:
		return domain.ZoneNotApplicable
	case rec.ZoneLookupDone:
		return domain.ZoneNotFound
	default:
		return ""
	}
}

func gridValue(rec *domain.OrgRecord, v int) string {
	if rec.Zones.GridID == "" {
		return zoneValue(rec, "")
	}
	return strconv.Itoa(v)
}

// alertValues renders the alert/disaster/risk enrichment columns for one
// record, in alertColumns order.
func alertValues(rec *domain.OrgRecord) []string {
	a := rec.Alerts
	d := rec.Disasters
	r := rec.Risk

	femaStatus := strings.Join(d.Statuses, " | ")
	if d.StatusNote != "" {
		femaStatus = d.StatusNote
	}

	factors := strings.Join(r.Factors, " | ")
	if factors == "" {
		factors = "None"
	}

	checkedAt := ""
	if !rec.ProcessedAt.IsZero() {
		checkedAt = rec.ProcessedAt.Format(time.RFC3339)
	}

	return []string{
		boolValue(a.HasActiveAlerts),
		strconv.Itoa(a.AlertCount),
		a.MaxSeverity,
		strings.Join(a.Events, " | "),
		strings.Join(a.Headlines, " | "),
		strings.Join(a.Descriptions, " | "),
		strings.Join(a.Instructions, " | "),
		a.EarliestEffective,
		a.LatestExpires,
		a.MaxUrgency,
		a.MaxCertainty,
		strings.Join(a.WebURLs, " | "),
		strings.Join(a.AlertIDs, " | "),

		strconv.Itoa(d.DisasterCount),
		strconv.Itoa(d.ActiveDisasters),
		strconv.Itoa(d.RecentDisasters),
		strings.Join(d.Types, " | "),
		strings.Join(d.Titles, " | "),
		strings.Join(d.Counties, " | "),
		strings.Join(d.WebURLs, " | "),
		d.LatestDate,
		strings.Join(d.Numbers, " | "),
		femaStatus,

		r.Level,
		factors,
		checkedAt,
	}
}

// boolValue matches the True/False literals earlier exports used, so
// spreadsheets consuming both vintages see consistent values.
func boolValue(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
