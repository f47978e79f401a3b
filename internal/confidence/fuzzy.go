package confidence

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// normalizeName upper-cases and sorts a name's whitespace-delimited tokens, so
// "M/V PACIFIC GLORY" and "GLORY PACIFIC M/V" compare equal. Mirrors
// internal/identity's sorted-token normal form; kept as a local copy rather than an
// import since owner-clustering is a distinct concern from entity merge candidates.
func normalizeName(name string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(name)))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// nameSimilarity scores two names 0-100 via Jaro-Winkler over their sorted-token
// normal forms.
func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4) * 100
}
