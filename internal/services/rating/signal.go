package rating

import (
	"github.com/ternarybob/intentrank/internal/models"
)

// Recency enters the adjusted score as 1 + (recency - 0.5) × recencySpread,
// i.e. between 0.8 and 1.2
const recencySpread = 0.4

// SignalMultipliersFor looks up every factor applied to one analyzed signal
func SignalMultipliersFor(a models.AnalyzedSignal, w Weights) models.SignalMultipliers {
	qc := a.QualitativeContext
	return models.SignalMultipliers{
		Urgency:           lookup(w.Urgency, string(qc.Urgency), 1.0),
		Specificity:       lookup(w.Specificity, string(qc.Specificity), 1.0),
		BuyingStage:       lookup(w.BuyingStage, string(qc.BuyingStage), lookup(w.BuyingStage, string(models.StageUnknown), 1.0)),
		FalsePositiveRisk: lookup(w.FalsePositiveRisk, string(qc.FalsePositiveRisk), 1.0),
		Recency:           1 + (a.TemporalFactors.Recency-0.5)*recencySpread,
		Velocity:          lookup(w.Velocity, string(a.TemporalFactors.Velocity), 1.0),
	}
}

// AdjustedScore applies the multipliers to the quantitative score, clamped
// to [0, 100]
func AdjustedScore(quantitative float64, m models.SignalMultipliers) float64 {
	adjusted := quantitative * m.Urgency * m.Specificity * m.BuyingStage *
		m.FalsePositiveRisk * m.Recency * m.Velocity
	return ClampFloat64(adjusted, 0, 100)
}

// SignalWeight returns the base weight of a signal type
func SignalWeight(t models.SignalType, w Weights) float64 {
	if v, ok := w.SignalWeights[string(t)]; ok {
		return v
	}
	return w.SignalWeights[UnknownSignalWeight]
}

// CalculateSignalComponent returns the type-weighted mean of adjusted signal
// scores and the per-signal breakdown
func CalculateSignalComponent(analyzed []models.AnalyzedSignal, w Weights) (float64, []models.SignalContribution) {
	breakdown := make([]models.SignalContribution, 0, len(analyzed))
	values := make([]float64, 0, len(analyzed))
	weights := make([]float64, 0, len(analyzed))

	for _, a := range analyzed {
		m := SignalMultipliersFor(a, w)
		adjusted := AdjustedScore(a.QuantitativeScore, m)
		weight := SignalWeight(a.RawData.Type, w)

		breakdown = append(breakdown, models.SignalContribution{
			Index:             a.Index,
			Type:              a.RawData.Type,
			QuantitativeScore: a.QuantitativeScore,
			AdjustedScore:     Round(adjusted, 2),
			Weight:            weight,
			Multipliers:       m,
		})
		values = append(values, adjusted)
		weights = append(weights, weight)
	}

	return WeightedMean(values, weights, 0), breakdown
}
