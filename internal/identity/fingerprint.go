package identity

import (
	"math"

	"github.com/radiancefleet/core/internal/model"
)

// FingerprintScorer compares two vessels' behavioral fingerprints and returns a 0-100
// similarity plus whether a score could be produced at all (both fingerprints must
// carry at least one shared feature). spec.md leaves the scorer implementation
// unspecified beyond "10-feature vector, diagonal covariance when few windows, full
// covariance otherwise" — this is treated as a pluggable strategy so a target with
// enough historical fingerprint windows to estimate a real covariance matrix can swap
// in its own scorer without touching candidate discovery.
type FingerprintScorer interface {
	Score(a, b *model.VesselFingerprint) (score float64, ok bool)
}

// DiagonalFingerprintScorer is the default scorer: it treats every shared feature as
// independent (a diagonal covariance matrix) and scores by normalized distance. This
// is the "few windows" case from spec.md's description; it never degrades to a full
// covariance estimate since that requires a population of fingerprints this package
// does not maintain.
type DiagonalFingerprintScorer struct {
	// typicalSpread is the assumed standard deviation for a feature whose value is a
	// float64, used to normalize distance absent a real per-feature variance estimate.
	typicalSpread float64
}

// NewDiagonalFingerprintScorer returns the default scorer with typicalSpread standard
// deviations per numeric feature. A value of 0 selects a reasonable default (1.0).
func NewDiagonalFingerprintScorer(typicalSpread float64) DiagonalFingerprintScorer {
	if typicalSpread <= 0 {
		typicalSpread = 1.0
	}
	return DiagonalFingerprintScorer{typicalSpread: typicalSpread}
}

func (s DiagonalFingerprintScorer) Score(a, b *model.VesselFingerprint) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	var sumSq float64
	var n int
	for key, av := range a.Features {
		bv, ok := b.Features[key]
		if !ok {
			continue
		}
		af, aok := toFloat(av)
		bf, bok := toFloat(bv)
		if !aok || !bok {
			continue
		}
		d := (af - bf) / s.typicalSpread
		sumSq += d * d
		n++
	}
	if n == 0 {
		return 0, false
	}
	// Mean squared z-distance across shared features (diagonal covariance: no
	// cross-feature terms). A distance of 0 is a perfect match (100); distance grows
	// the score shrinks toward 0 following a simple exponential decay.
	meanSq := sumSq / float64(n)
	score := 100 * math.Exp(-meanSq)
	return score, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
