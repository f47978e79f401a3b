package identity

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// normalizeName upper-cases and sorts a vessel name's whitespace-delimited tokens, so
// "M/V PACIFIC GLORY" and "GLORY PACIFIC M/V" compare equal. This mirrors the
// sorted-token similarity spec.md's candidate-detection step calls for.
func normalizeName(name string) string {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(name)))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// nameSimilarity scores two vessel names 0-100 via Jaro-Winkler over their
// sorted-token normal forms.
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
