package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

// Table is a parsed organization CSV: the preserved source header (managed
// enrichment columns stripped) and one record per data row.
type Table struct {
	Header  []string
	Records []domain.OrgRecord
}

// requiredColumns must exist in the source export. Their absence is a
// configuration error: the wrong report type was exported.
var requiredColumns = []string{
	domain.ColName,
	domain.ColStreet,
	domain.ColCity,
	domain.ColState,
	domain.ColZip,
}

// fallbackEncodings is the decode chain tried in order when no explicit
// encoding is given. UTF-8 is validated directly; cp1252 is the usual
// source of Excel exports and decodes any byte sequence, so it acts as
// the catch-all. iso-8859-1 stays in the list to document the chain and
// for symmetry with the named encodings.
var fallbackEncodings = []struct {
	name    string
	decoder *encoding.Decoder
}{
	{"utf-8", nil},
	{"cp1252", charmap.Windows1252.NewDecoder()},
	{"iso-8859-1", charmap.ISO8859_1.NewDecoder()},
}

// namedEncodings maps the -e flag values to decoders.
var namedEncodings = map[string]*encoding.Decoder{
	"utf-8":        nil,
	"utf8":         nil,
	"cp1252":       charmap.Windows1252.NewDecoder(),
	"windows-1252": charmap.Windows1252.NewDecoder(),
	"iso-8859-1":   charmap.ISO8859_1.NewDecoder(),
	"latin1":       charmap.ISO8859_1.NewDecoder(),
}

// ReadOrganizations loads an organization CSV. An empty encodingName
// triggers the fallback chain; a named encoding is used as-is. Missing
// required columns and undecodable or empty files are errors.
func ReadOrganizations(path, encodingName string, logger *slog.Logger) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}

	text, usedEncoding, err := decode(raw, encodingName)
	if err != nil {
		return nil, err
	}
	logger.Info("read input file", "path", path, "encoding", usedEncoding)

	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input file %s has no rows", path)
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	table := &Table{Records: make([]domain.OrgRecord, 0, len(rows)-1)}
	for _, name := range header {
		if !managedColumns[strings.TrimSpace(name)] {
			table.Header = append(table.Header, name)
		}
	}

	for _, row := range rows[1:] {
		table.Records = append(table.Records, parseRecord(row, header, colIndex))
	}

	return table, nil
}

// decode converts raw bytes to a UTF-8 string, stripping any BOM.
func decode(raw []byte, encodingName string) (string, string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	if encodingName != "" {
		dec, ok := namedEncodings[strings.ToLower(encodingName)]
		if !ok {
			return "", "", fmt.Errorf("unknown encoding %q", encodingName)
		}
		if dec == nil {
			if !utf8.Valid(raw) {
				return "", "", fmt.Errorf("input is not valid %s", encodingName)
			}
			return string(raw), encodingName, nil
		}
		decoded, err := dec.Bytes(raw)
		if err != nil {
			return "", "", fmt.Errorf("decode as %s: %w", encodingName, err)
		}
		return string(decoded), encodingName, nil
	}

	for _, enc := range fallbackEncodings {
		if enc.decoder == nil {
			if utf8.Valid(raw) {
				return string(raw), enc.name, nil
			}
			continue
		}
		decoded, err := enc.decoder.Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), enc.name, nil
	}

	return "", "", fmt.Errorf("could not decode input with any supported encoding")
}

func parseRecord(row, header []string, colIndex map[string]int) domain.OrgRecord {
	get := func(col string) string {
		i, ok := colIndex[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := domain.OrgRecord{
		SourceID: strings.TrimSpace(get(domain.ColOrgID)),
		Name:     get(domain.ColName),
		Street:   get(domain.ColStreet),
		City:     get(domain.ColCity),
		State:    strings.TrimSpace(get(domain.ColState)),
		Zip:      get(domain.ColZip),
		Fields:   make(map[string]string),
	}

	for i, name := range header {
		if i >= len(row) || managedColumns[strings.TrimSpace(name)] {
			continue
		}
		rec.Fields[name] = row[i]
	}

	parsePriorEnrichment(&rec, get)
	return rec
}

// parsePriorEnrichment reconstructs geocoding state from enrichment columns
// already present in the input, so previously processed rows are not
// re-resolved.
func parsePriorEnrichment(rec *domain.OrgRecord, get func(string) string) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(get("Latitude")), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(get("Longitude")), 64)
	status := domain.Status(strings.TrimSpace(get("Geocoding_Status")))
	method := domain.Method(strings.TrimSpace(get("Geocoding_Method")))

	// A prior result counts only when all four fields are present.
	if errLat == nil && errLon == nil && status != domain.StatusNone && method != "" {
		rec.Geocode = domain.GeocodeResult{
			Point:  domain.Point{Lat: lat, Lon: lon},
			Method: method,
			Status: status,
		}
	}

	rec.Zones = domain.ZoneSet{
		CWAOffice:    nonSentinel(get("CWA_Office")),
		ForecastZone: nonSentinel(get("Forecast_Zone")),
		CountyZone:   nonSentinel(get("County_Zone")),
		FireZone:     nonSentinel(get("Fire_Zone")),
		GridID:       nonSentinel(get("Grid_ID")),
	}
	if x, err := strconv.Atoi(strings.TrimSpace(get("Grid_X"))); err == nil {
		rec.Zones.GridX = x
	}
	if y, err := strconv.Atoi(strings.TrimSpace(get("Grid_Y"))); err == nil {
		rec.Zones.GridY = y
	}

	// Older outputs carry only CWA_Region. Reconstruct what we can:
	// 3-letter values are office codes, longer ones forecast zones.
	region := strings.TrimSpace(get("CWA_Region"))
	if rec.Zones.IsEmpty() && !domain.IsZoneSentinel(region) {
		if len(region) == 3 {
			rec.Zones.CWAOffice = region
		} else {
			rec.Zones.ForecastZone = region
		}
	}

	switch {
	case !rec.Zones.IsEmpty(), region == domain.ZoneNotFound:
		rec.ZoneLookupDone = true
	}
}

func nonSentinel(v string) string {
	v = strings.TrimSpace(v)
	if domain.IsZoneSentinel(v) {
		return ""
	}
	return v
}
