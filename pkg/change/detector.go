package change

import (
	"math"
	"unicode/utf8"
)

// HasSignificantChange reports whether current has drifted from baseline by at
// least thresholdPercent. The metric is a length-delta ratio:
//
//	|len(current) - len(baseline)| / max(len(baseline), 1) * 100
//
// A threshold of 0 means any difference at all counts. Identical inputs are
// never significant, whatever the threshold, so no-op edits can never arm a
// save or produce a checkpoint.
//
// Known limitation: a same-length edit scores a 0% delta and is invisible to
// any threshold above 0. The heuristic trades precision for being cheap enough
// to run on every keystroke.
func HasSignificantChange(baseline, current string, thresholdPercent float64) bool {
	if baseline == current {
		return false
	}

	threshold := clampPercent(thresholdPercent)

	baseLen := utf8.RuneCountInString(baseline)
	currLen := utf8.RuneCountInString(current)

	denominator := baseLen
	if denominator < 1 {
		denominator = 1
	}

	ratio := math.Abs(float64(currLen-baseLen)) / float64(denominator) * 100
	return ratio >= threshold
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
