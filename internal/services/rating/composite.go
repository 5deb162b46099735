// Package rating fuses analyzed signals, matched patterns and prospect fit into
// a single quality score. All functions are stateless and perform no I/O
// apart from LoadWeights.
package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/intentrank/internal/models"
)

// Priority thresholds on the 0-100 quality score
const (
	ThresholdUrgent = 85
	ThresholdHigh   = 70
	ThresholdMedium = 50
	ThresholdLow    = 30
)

// Confidence bands
const (
	highConfidenceSignals     = 6
	patternConfidenceSignals  = 5
	minimumEvidenceSignals    = 3
	completenessTarget        = 5.0
	highCompletenessThreshold = 0.8
)

// CalculateQualityScore combines the three components into the final
// assessment.
//
// Formula:
// qualityScore = round(signal×w_signal + pattern×w_pattern + fit×w_fit), clamped to 0-100
//
// Priority:
// - any false-positive pattern: ignore
// - otherwise urgent ≥85, high ≥70, medium ≥50, low ≥30, else ignore
func CalculateQualityScore(
	analyzed []models.AnalyzedSignal,
	matches []models.MatchedPattern,
	prospect models.Prospect,
	w Weights,
) models.QualityScoreResult {
	weights := w.normalizedComponents()

	signalScore, breakdown := CalculateSignalComponent(analyzed, w)
	patternScore := CalculatePatternComponent(matches)
	fitScore := CalculateFitComponent(prospect, w)

	raw := signalScore*weights.Signal + patternScore*weights.Pattern + fitScore*weights.Fit
	quality := int(ClampFloat64(math.Round(raw), 0, 100))

	// False-positive matches are evidence against intent, not for confidence
	confidence := DetermineConfidence(len(analyzed), positiveMatches(matches))
	priority := DeterminePriority(quality, HasFalsePositive(matches))

	if matches == nil {
		matches = []models.MatchedPattern{}
	}

	return models.QualityScoreResult{
		QualityScore:    quality,
		Confidence:      confidence,
		PriorityLevel:   priority,
		Breakdown:       breakdown,
		MatchedPatterns: matches,
		Reasoning:       buildReasoning(quality, priority, signalScore, patternScore, fitScore, len(analyzed), matches),
		Components: models.ScoreComponents{
			Signal:  Round(signalScore, 2),
			Pattern: Round(patternScore, 2),
			Fit:     Round(fitScore, 2),
			Weights: weights,
		},
	}
}

// DetermineConfidence grades how much evidence backs the score. The first
// matching rule wins.
func DetermineConfidence(signalCount, patternCount int) models.Level {
	completeness := math.Min(1, float64(signalCount)/completenessTarget)

	switch {
	case signalCount >= highConfidenceSignals:
		return models.LevelHigh
	case signalCount >= patternConfidenceSignals && patternCount >= 1:
		return models.LevelHigh
	case signalCount >= minimumEvidenceSignals && patternCount >= 1 && completeness >= highCompletenessThreshold:
		return models.LevelHigh
	case signalCount < minimumEvidenceSignals && patternCount == 0:
		return models.LevelLow
	default:
		return models.LevelMedium
	}
}

// DeterminePriority maps a quality score onto a priority level. A
// false-positive match always yields ignore.
func DeterminePriority(quality int, falsePositive bool) models.Priority {
	if falsePositive {
		return models.PriorityIgnore
	}
	switch {
	case quality >= ThresholdUrgent:
		return models.PriorityUrgent
	case quality >= ThresholdHigh:
		return models.PriorityHigh
	case quality >= ThresholdMedium:
		return models.PriorityMedium
	case quality >= ThresholdLow:
		return models.PriorityLow
	default:
		return models.PriorityIgnore
	}
}

func buildReasoning(quality int, priority models.Priority, signal, pattern, fit float64, signalCount int, matches []models.MatchedPattern) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quality=%d (%s): signal=%.1f pattern=%.1f fit=%.1f from %d signal(s)",
		quality, priority, signal, pattern, fit, signalCount)

	if len(matches) == 0 {
		b.WriteString("; no patterns matched")
		return b.String()
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.IsFalsePositive {
			names = append(names, m.Name+" [false positive]")
		} else {
			names = append(names, m.Name)
		}
	}
	fmt.Fprintf(&b, "; patterns: %s", strings.Join(names, ", "))

	if HasFalsePositive(matches) {
		b.WriteString("; false-positive pattern forces ignore")
	}
	return b.String()
}
