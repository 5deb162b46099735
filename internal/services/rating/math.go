package rating

import "math"

// ClampFloat64 constrains value to [min, max]
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

// WeightedMean returns Σ(value×weight)/Σweight, or fallback when the weights
// sum to zero
func WeightedMean(values, weights []float64, fallback float64) float64 {
	var sum, total float64
	for i := range values {
		if i >= len(weights) {
			break
		}
		sum += values[i] * weights[i]
		total += weights[i]
	}
	if total <= 0 {
		return fallback
	}
	return sum / total
}
