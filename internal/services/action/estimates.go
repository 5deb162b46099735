package action

import (
	"math"
	"strings"
	"unicode"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/rating"
)

const (
	baseDealValue  = 100_000.0
	dealValueRange = 0.2
	dealCurrency   = "USD"

	scoreShare   = 0.4
	patternShare = 0.6
)

var confidenceMultipliers = map[models.Level]float64{
	models.LevelHigh:   1.0,
	models.LevelMedium: 0.85,
	models.LevelLow:    0.7,
}

var dealSizeMultipliers = map[string]float64{
	"1-10":      0.2,
	"11-50":     0.5,
	"50-200":    1.0,
	"51-200":    1.0,
	"201-500":   1.5,
	"501-1000":  2.0,
	"1001-5000": 3.0,
	"5000+":     5.0,
}

// ConversionProbability blends the quality score with the top pattern's
// historical conversion and discounts by confidence
func ConversionProbability(score int, confidence models.Level, top *models.MatchedPattern) float64 {
	m, ok := confidenceMultipliers[confidence]
	if !ok {
		m = confidenceMultipliers[models.LevelLow]
	}

	s := float64(score) / 100
	if top == nil {
		return rating.Round(s*m, 2)
	}
	return rating.Round((s*scoreShare+top.HistoricalConversion/100*patternShare)*m, 2)
}

// DaysToClose uses the top pattern's average when known, otherwise
// 30 days plus half a day per missing score point
func DaysToClose(score int, top *models.MatchedPattern) int {
	if top != nil && top.AvgDaysToClose != nil {
		return *top.AvgDaysToClose
	}
	return int(math.Round(30 + float64(100-score)*0.5))
}

// DealValue estimates a ±20% deal size band from company size and seniority
func DealValue(p models.Prospect) models.DealValueRange {
	size, ok := dealSizeMultipliers[rating.NormalizeCompanySize(p.CompanySize)]
	if !ok {
		size = 1.0
	}
	value := baseDealValue * size * SeniorityMultiplier(p.Role)

	return models.DealValueRange{
		Low:      int(math.Round(value * (1 - dealValueRange))),
		High:     int(math.Round(value * (1 + dealValueRange))),
		Currency: dealCurrency,
	}
}

// SeniorityMultiplier scales deal value by the prospect's role level
func SeniorityMultiplier(role string) float64 {
	lower := strings.ToLower(role)
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) }) {
		tokens[tok] = true
	}
	has := func(words ...string) bool {
		for _, w := range words {
			if tokens[w] {
				return true
			}
		}
		return false
	}

	switch {
	case has("chief", "cxo", "ceo", "cto", "cro", "cfo", "coo"):
		return 1.5
	case has("vp", "svp", "evp") || strings.Contains(lower, "vice president"):
		return 1.3
	case has("director") || strings.Contains(lower, "head of"):
		return 1.15
	case has("manager"):
		return 1.0
	default:
		return 0.9
	}
}
