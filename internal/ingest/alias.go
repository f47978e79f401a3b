package ingest

import "strings"

// columnAliases maps every recognized source-feed column spelling (case-insensitive,
// underscores/camelCase/NOAA-style all folded) to the canonical field name used by
// the rest of this package.
var columnAliases = map[string]string{
	"mmsi":          "mmsi",
	"basedatetime":  "timestamp",
	"timestamp":     "timestamp",
	"datetime":      "timestamp",
	"lat":           "lat",
	"latitude":      "lat",
	"lon":           "lon",
	"long":          "lon",
	"longitude":     "lon",
	"sog":           "sog",
	"speed":         "sog",
	"cog":           "cog",
	"course":        "cog",
	"heading":       "heading",
	"navstatus":     "nav_status",
	"status":        "nav_status",
	"vesselname":    "name",
	"name":          "name",
	"imo":           "imo",
	"callsign":      "callsign",
	"vesseltype":    "vessel_type",
	"vtype":         "vessel_type",
	"length":        "length",
	"width":         "width",
	"draft":         "draught",
	"draught":       "draught",
	"cargo":         "cargo",
	"transceiverclass": "ais_class",
}

// NormalizeHeader maps a raw CSV/feed column name to this package's canonical field
// name. Unknown columns return ("", false) and are dropped rather than rejected: an
// extra, unrecognized column in a feed export is not a validation failure.
func NormalizeHeader(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, " ", "")
	name, ok := columnAliases[key]
	return name, ok
}

// MapHeaders converts a CSV header row into a canonical-field → column-index map,
// skipping columns this package does not recognize.
func MapHeaders(headers []string) map[string]int {
	out := make(map[string]int, len(headers))
	for i, h := range headers {
		if name, ok := NormalizeHeader(h); ok {
			out[name] = i
		}
	}
	return out
}
