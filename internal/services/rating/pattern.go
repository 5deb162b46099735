package rating

import "github.com/ternarybob/intentrank/internal/models"

// NeutralPatternScore is the pattern component when no positive pattern matched
const NeutralPatternScore = 50.0

// CalculatePatternComponent averages the historical conversion of matched
// patterns, weighted by confidence × weight/100. False-positive and
// non-positive-weight patterns do not contribute.
func CalculatePatternComponent(matches []models.MatchedPattern) float64 {
	var values, weights []float64
	for _, m := range matches {
		if m.IsFalsePositive || m.Weight <= 0 {
			continue
		}
		values = append(values, m.HistoricalConversion)
		weights = append(weights, m.Confidence*m.Weight/100)
	}
	return WeightedMean(values, weights, NeutralPatternScore)
}

// HasFalsePositive reports whether any matched pattern marks the cluster as
// a false positive
func HasFalsePositive(matches []models.MatchedPattern) bool {
	for _, m := range matches {
		if m.IsFalsePositive {
			return true
		}
	}
	return false
}

// positiveMatches counts matched patterns that are evidence of intent
func positiveMatches(matches []models.MatchedPattern) int {
	n := 0
	for _, m := range matches {
		if !m.IsFalsePositive {
			n++
		}
	}
	return n
}
