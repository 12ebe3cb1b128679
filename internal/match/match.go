// Package match implements the nearest-neighbor face matching policy.
//
// A known descriptor is a candidate when its Euclidean distance to the
// unknown descriptor is within tolerance (inclusive). The verdict is driven
// by the single closest known descriptor: Matched when it is within
// tolerance, NoMatch otherwise. The policy is pure and performs no I/O.
package match

import (
	"math"

	"github.com/your-org/watchdog/internal/models"
)

type Kind int

const (
	// Ambiguous means the policy could not be evaluated at all (no usable
	// face, unreadable image). Produced by callers, never by Match itself.
	Ambiguous Kind = iota
	NoMatch
	Matched
)

// Match identifies the selected known face for a Matched verdict.
type Match struct {
	FaceID     int64
	UserID     int64
	Username   string
	Distance   float64
	Confidence float64 // 1 - Distance
}

// Verdict is the outcome of the matching policy.
type Verdict struct {
	Kind   Kind
	Match  *Match // set when Kind == Matched
	Reason string // set when Kind == Ambiguous
}

// AmbiguousVerdict builds an Ambiguous verdict with the given reason.
func AmbiguousVerdict(reason string) Verdict {
	return Verdict{Kind: Ambiguous, Reason: reason}
}

// Compare computes the nearest known face against the unknown descriptor
// and returns Matched when its distance is within tolerance.
//
// Ties on distance are broken by the lowest face id, so the result is
// stable between runs regardless of input order. An empty known set yields
// NoMatch.
func Compare(known []models.KnownFace, unknown []float32, tolerance float64) Verdict {
	bestIdx := -1
	bestDist := math.Inf(1)

	for i, kf := range known {
		d := Distance(kf.Descriptor, unknown)
		if d < bestDist || (d == bestDist && bestIdx >= 0 && kf.FaceID < known[bestIdx].FaceID) {
			bestIdx = i
			bestDist = d
		}
	}

	if bestIdx < 0 || bestDist > tolerance {
		return Verdict{Kind: NoMatch}
	}

	kf := known[bestIdx]
	return Verdict{
		Kind: Matched,
		Match: &Match{
			FaceID:     kf.FaceID,
			UserID:     kf.UserID,
			Username:   kf.Username,
			Distance:   bestDist,
			Confidence: 1 - bestDist,
		},
	}
}

// Distance returns the Euclidean distance between two descriptors.
// Mismatched lengths compare only the shared prefix; in practice all
// descriptors come from the same extractor and share one dimension.
func Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
