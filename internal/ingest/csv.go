package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// ParseCSV reads a header-driven CSV feed (case-insensitive column names, any
// recognized alias from alias.go) into Raw rows. It does not validate; call Validate
// per row. A column this package does not recognize is ignored rather than failing
// the parse.
func ParseCSV(r io.Reader, source string) ([]Raw, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}
	cols := MapHeaders(header)
	for _, required := range []string{"mmsi", "timestamp", "lat", "lon"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ingest: csv missing required column %q", required)
		}
	}

	var rows []Raw
	lineNo := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row %d: %w", lineNo, err)
		}
		lineNo++

		row, err := parseRow(record, cols, source)
		if err != nil {
			return nil, fmt.Errorf("ingest: parse csv row %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func col(record []string, cols map[string]int, name string) (string, bool) {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	v := strings.TrimSpace(record[idx])
	if v == "" {
		return "", false
	}
	return v, true
}

func parseRow(record []string, cols map[string]int, source string) (Raw, error) {
	var row Raw
	row.Source = source

	mmsi, _ := col(record, cols, "mmsi")
	row.MMSI = mmsi

	ts, ok := col(record, cols, "timestamp")
	if !ok {
		return row, fmt.Errorf("missing timestamp")
	}
	parsed, err := parseTimestamp(ts)
	if err != nil {
		return row, fmt.Errorf("timestamp %q: %w", ts, err)
	}
	row.Timestamp = parsed

	latStr, ok := col(record, cols, "lat")
	if !ok {
		return row, fmt.Errorf("missing lat")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return row, fmt.Errorf("lat %q: %w", latStr, err)
	}
	row.Lat = lat

	lonStr, ok := col(record, cols, "lon")
	if !ok {
		return row, fmt.Errorf("missing lon")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return row, fmt.Errorf("lon %q: %w", lonStr, err)
	}
	row.Lon = lon

	if sogStr, ok := col(record, cols, "sog"); ok {
		if sog, err := strconv.ParseFloat(sogStr, 64); err == nil && sog < model.SOGAbsentSentinel {
			row.SOG = &sog
		}
	}
	if cogStr, ok := col(record, cols, "cog"); ok {
		if cog, err := strconv.ParseFloat(cogStr, 64); err == nil {
			row.COG = &cog
		}
	}
	if hStr, ok := col(record, cols, "heading"); ok {
		if h, err := strconv.Atoi(hStr); err == nil {
			row.Heading = &h
		}
	}
	if nsStr, ok := col(record, cols, "nav_status"); ok {
		if ns, err := strconv.Atoi(nsStr); err == nil {
			row.NavStatus = &ns
		}
	}

	row.IMO = strings.TrimPrefix(strings.TrimSpace(func() string { v, _ := col(record, cols, "imo"); return v }()), "IMO")
	row.Name, _ = col(record, cols, "name")
	row.VesselType, _ = col(record, cols, "vessel_type")

	return row, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
