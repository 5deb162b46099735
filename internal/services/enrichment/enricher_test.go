package enrichment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
)

func TestMerge(t *testing.T) {
	seed := SeedContext(models.LevelHigh)

	t.Run("nil enrichment keeps seed", func(t *testing.T) {
		merged := Merge(seed, nil)
		assert.Equal(t, seed, merged)
		assert.Equal(t, models.SourceHeuristic, merged.Source)
		assert.Equal(t, models.LevelMedium, merged.Specificity)
		assert.Equal(t, models.StageUnknown, merged.BuyingStage)
		assert.Zero(t, merged.Confidence)
	})

	t.Run("enrichment wins", func(t *testing.T) {
		enriched := &models.QualitativeContext{
			Sentiment:         models.SentimentPositive,
			PainPoints:        []string{"manual research"},
			Urgency:           models.LevelLow,
			Specificity:       models.LevelHigh,
			BuyingStage:       models.StageDecision,
			FalsePositiveRisk: models.LevelLow,
			Confidence:        0.9,
			Source:            models.SourceLLM,
		}
		merged := Merge(seed, enriched)
		assert.Equal(t, models.LevelLow, merged.Urgency)
		assert.Equal(t, models.StageDecision, merged.BuyingStage)
		assert.Equal(t, models.SourceLLM, merged.Source)
		assert.InDelta(t, 0.9, merged.Confidence, 1e-9)
	})

	t.Run("empty fields fall back to seed", func(t *testing.T) {
		merged := Merge(seed, &models.QualitativeContext{Confidence: 0.4, Source: models.SourceLLM})
		assert.Equal(t, models.LevelHigh, merged.Urgency)
		assert.Equal(t, models.SentimentNeutral, merged.Sentiment)
		assert.Equal(t, models.LevelMedium, merged.FalsePositiveRisk)
		assert.NotNil(t, merged.PainPoints)
	})

	t.Run("inputs are not aliased", func(t *testing.T) {
		enriched := &models.QualitativeContext{PainPoints: []string{"a"}, Confidence: 0.5}
		merged := Merge(seed, enriched)
		merged.PainPoints[0] = "changed"
		assert.Equal(t, "a", enriched.PainPoints[0])
	})
}

// scriptedEnricher fails or panics for chosen signal indexes, identified by
// the signal's VisitNumber
type scriptedEnricher struct {
	failOn  map[int]bool
	panicOn map[int]bool
	calls   atomic.Int32
}

func (s *scriptedEnricher) Name() string { return "scripted" }

func (s *scriptedEnricher) Enrich(_ context.Context, signal models.Signal, _ models.Prospect) (*models.QualitativeContext, error) {
	s.calls.Add(1)
	if s.panicOn[signal.VisitNumber] {
		panic("boom")
	}
	if s.failOn[signal.VisitNumber] {
		return nil, errors.New("upstream unavailable")
	}
	return &models.QualitativeContext{
		Sentiment:         models.SentimentPositive,
		PainPoints:        []string{},
		Urgency:           models.LevelHigh,
		Specificity:       models.LevelHigh,
		BuyingStage:       models.StageDecision,
		FalsePositiveRisk: models.LevelLow,
		Confidence:        0.8,
		Source:            models.SourceLLM,
	}, nil
}

func analyzedFixture(n int) []models.AnalyzedSignal {
	out := make([]models.AnalyzedSignal, n)
	for i := range out {
		out[i] = models.AnalyzedSignal{
			Index:              i,
			RawData:            models.Signal{Type: models.SignalWebsiteVisit, Page: "/pricing", VisitNumber: i},
			QuantitativeScore:  60,
			QualitativeContext: SeedContext(models.LevelMedium),
		}
	}
	return out
}

func TestEnrichAll_IsolatesFailures(t *testing.T) {
	enricher := &scriptedEnricher{
		failOn:  map[int]bool{1: true},
		panicOn: map[int]bool{3: true},
	}
	input := analyzedFixture(5)

	out, failed := EnrichAll(context.Background(), enricher, input, models.Prospect{Company: "Acme"}, 2, arbor.NewLogger())
	require.Len(t, out, 5)
	assert.Equal(t, 2, failed)
	assert.EqualValues(t, 5, enricher.calls.Load())

	for i, a := range out {
		assert.Equal(t, i, a.Index)
		if i == 1 || i == 3 {
			assert.False(t, a.Enriched, "signal %d", i)
			assert.Equal(t, models.SourceHeuristic, a.QualitativeContext.Source)
			continue
		}
		assert.True(t, a.Enriched, "signal %d", i)
		assert.Equal(t, models.StageDecision, a.QualitativeContext.BuyingStage)
	}

	// input slice is untouched
	for _, a := range input {
		assert.False(t, a.Enriched)
		assert.Equal(t, models.SourceHeuristic, a.QualitativeContext.Source)
	}
}

func TestEnrichAll_NilEnricher(t *testing.T) {
	input := analyzedFixture(2)
	out, failed := EnrichAll(context.Background(), nil, input, models.Prospect{Company: "Acme"}, 0, arbor.NewLogger())
	assert.Zero(t, failed)
	assert.Equal(t, input, out)
}

func TestEnrichAll_WithRuleEnricher(t *testing.T) {
	input := analyzedFixture(3)
	out, failed := EnrichAll(context.Background(), NewRuleEnricher(), input, models.Prospect{Company: "Acme"}, 0, arbor.NewLogger())
	assert.Zero(t, failed)
	for _, a := range out {
		assert.True(t, a.Enriched)
		assert.Equal(t, models.SourceRules, a.QualitativeContext.Source)
	}
}
