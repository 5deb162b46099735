// Package temporal provides pure time-based calculations for signal weighting.
// All functions are stateless and take the reference time explicitly.
package temporal

import (
	"math"
	"sort"
	"time"

	"github.com/ternarybob/intentrank/internal/models"
)

const (
	// DefaultHalfLifeDays is the recency half-life used when none is configured
	DefaultHalfLifeDays = 7.0

	// NeutralRecency is returned for signals without a timestamp
	NeutralRecency = 0.5

	increasingRatio = 0.7
	decreasingRatio = 1.3

	highUrgencyDays   = 2.0
	mediumUrgencyDays = 7.0
)

// DaysAgo returns the fractional number of days between ts and now.
// Negative values mean ts is in the future.
func DaysAgo(ts, now time.Time) float64 {
	return now.Sub(ts).Hours() / 24
}

// Recency scores a timestamp with exponential decay: 0.5^(daysAgo/halfLife).
// A missing timestamp is neutral (0.5) and a future timestamp scores 1.0.
func Recency(ts *time.Time, now time.Time, halfLifeDays float64) float64 {
	if ts == nil {
		return NeutralRecency
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	days := DaysAgo(*ts, now)
	if days <= 0 {
		return 1.0
	}
	return math.Pow(0.5, days/halfLifeDays)
}

// Frequency counts the signals of the given type in the request
func Frequency(signals []models.Signal, signalType models.SignalType) int {
	count := 0
	for _, s := range signals {
		if s.Type == signalType {
			count++
		}
	}
	return count
}

// Velocity compares the mean inter-arrival gap of the first half of the
// timeline with the second half. Fewer than three timestamps is stable.
func Velocity(timestamps []time.Time) models.Velocity {
	if len(timestamps) < 3 {
		return models.VelocityStable
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	gaps := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps[i-1] = sorted[i].Sub(sorted[i-1]).Hours()
	}

	half := len(gaps) / 2
	firstHalf := mean(gaps[:half])
	secondHalf := mean(gaps[half:])

	switch {
	case secondHalf < firstHalf*increasingRatio:
		return models.VelocityIncreasing
	case secondHalf > firstHalf*decreasingRatio:
		return models.VelocityDecreasing
	default:
		return models.VelocityStable
	}
}

// Urgency is the pre-enrichment urgency seed derived from signal age.
// Signals without a timestamp are medium.
func Urgency(signal models.Signal, now time.Time) models.Level {
	if signal.Timestamp == nil {
		return models.LevelMedium
	}
	days := DaysAgo(*signal.Timestamp, now)
	switch {
	case days < highUrgencyDays:
		return models.LevelHigh
	case days < mediumUrgencyDays:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

// Analyze computes temporal factors for every signal of a request.
// Velocity is evaluated over the timestamps of signals sharing a type.
func Analyze(signals []models.Signal, now time.Time, halfLifeDays float64) []models.TemporalFactors {
	byType := make(map[models.SignalType][]time.Time)
	for _, s := range signals {
		if s.Timestamp != nil {
			byType[s.Type] = append(byType[s.Type], *s.Timestamp)
		}
	}

	velocities := make(map[models.SignalType]models.Velocity, len(byType))
	for signalType, timestamps := range byType {
		velocities[signalType] = Velocity(timestamps)
	}

	factors := make([]models.TemporalFactors, len(signals))
	for i, s := range signals {
		velocity, ok := velocities[s.Type]
		if !ok {
			velocity = models.VelocityStable
		}
		factors[i] = models.TemporalFactors{
			Recency:   Recency(s.Timestamp, now, halfLifeDays),
			Frequency: Frequency(signals, s.Type),
			Velocity:  velocity,
		}
	}
	return factors
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
