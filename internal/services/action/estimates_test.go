package action

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/intentrank/internal/models"
)

func TestConversionProbability(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		confidence models.Level
		top        *models.MatchedPattern
		want       float64
	}{
		{"pattern blend high confidence", 88, models.LevelHigh, &readyToBuy, 0.86},
		{"pattern blend low confidence", 88, models.LevelLow, &readyToBuy, 0.6},
		{"no pattern medium confidence", 88, models.LevelMedium, nil, 0.75},
		{"no pattern low confidence", 36, models.LevelLow, nil, 0.25},
		{"unknown confidence treated as low", 50, "", nil, 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConversionProbability(tt.score, tt.confidence, tt.top), 1e-9)
		})
	}
}

func TestDaysToClose(t *testing.T) {
	assert.Equal(t, 21, DaysToClose(88, &readyToBuy))
	assert.Equal(t, 36, DaysToClose(88, &models.MatchedPattern{PatternID: "custom"}))
	assert.Equal(t, 63, DaysToClose(35, nil))
	assert.Equal(t, 30, DaysToClose(100, nil))
}

func TestDealValue(t *testing.T) {
	tests := []struct {
		name     string
		prospect models.Prospect
		low      int
		high     int
	}{
		{"vp mid-size", models.Prospect{Role: "VP Sales", CompanySize: "50-200"}, 104000, 156000},
		{"ceo enterprise", models.Prospect{Role: "CEO", CompanySize: "5000+"}, 600000, 900000},
		{"director small", models.Prospect{Role: "Director of Sales", CompanySize: "11-50"}, 46000, 69000},
		{"unknown everything", models.Prospect{}, 72000, 108000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DealValue(tt.prospect)
			assert.Equal(t, tt.low, got.Low)
			assert.Equal(t, tt.high, got.High)
			assert.Equal(t, "USD", got.Currency)
		})
	}
}

func TestSeniorityMultiplier(t *testing.T) {
	assert.Equal(t, 1.5, SeniorityMultiplier("Chief Revenue Officer"))
	assert.Equal(t, 1.3, SeniorityMultiplier("Vice President, Sales"))
	assert.Equal(t, 1.15, SeniorityMultiplier("Head of Growth"))
	assert.Equal(t, 1.0, SeniorityMultiplier("Sales Manager"))
	assert.Equal(t, 0.9, SeniorityMultiplier("Account Executive"))
	assert.Equal(t, 0.9, SeniorityMultiplier("Microsoft Partner Rep"))
}
