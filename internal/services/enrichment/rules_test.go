package enrichment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/intentrank/internal/models"
)

const painfulComment = "We're struggling to scale our outbound process and need a solution urgently before Q4 planning. Our reps spend hours on manual prospect research."

func TestRuleEnricher_PainfulComment(t *testing.T) {
	e := NewRuleEnricher()
	qc, err := e.Enrich(context.Background(), models.Signal{
		Type:    models.SignalLinkedInEngagement,
		Action:  "commented",
		Content: painfulComment,
	}, models.Prospect{Company: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, qc)

	assert.Len(t, qc.PainPoints, 2)
	assert.Equal(t, models.LevelHigh, qc.Urgency)
	assert.Equal(t, models.LevelHigh, qc.Specificity)
	assert.Equal(t, models.StageConsideration, qc.BuyingStage)
	assert.Equal(t, models.SentimentNegative, qc.Sentiment)
	assert.Equal(t, models.LevelLow, qc.FalsePositiveRisk)
	assert.InDelta(t, 0.7, qc.Confidence, 1e-9)
	assert.Equal(t, models.SourceRules, qc.Source)
}

func TestRuleEnricher_WebsiteVisits(t *testing.T) {
	tests := []struct {
		name    string
		signal  models.Signal
		urgency models.Level
		stage   models.BuyingStage
		risk    models.Level
	}{
		{
			name:    "third pricing visit",
			signal:  models.Signal{Type: models.SignalWebsiteVisit, Page: "/pricing", Duration: 240, BounceRate: 0.1, VisitNumber: 3},
			urgency: models.LevelHigh,
			stage:   models.StageDecision,
			risk:    models.LevelLow,
		},
		{
			name:    "features page",
			signal:  models.Signal{Type: models.SignalWebsiteVisit, Page: "/features", Duration: 90},
			urgency: models.LevelMedium,
			stage:   models.StageConsideration,
			risk:    models.LevelLow,
		},
		{
			name:    "bounced blog visit",
			signal:  models.Signal{Type: models.SignalWebsiteVisit, Page: "/blog/post", Duration: 8, BounceRate: 0.9},
			urgency: models.LevelLow,
			stage:   models.StageAwareness,
			risk:    models.LevelHigh,
		},
		{
			name: "competitor visitor",
			signal: models.Signal{
				Type:     models.SignalWebsiteVisit,
				Page:     "/pricing",
				Duration: 45,
				Metadata: map[string]any{"visitor_category": "competitor"},
			},
			urgency: models.LevelLow,
			stage:   models.StageDecision,
			risk:    models.LevelHigh,
		},
	}

	e := NewRuleEnricher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc, err := e.Enrich(context.Background(), tt.signal, models.Prospect{Company: "Acme"})
			require.NoError(t, err)
			assert.Equal(t, tt.urgency, qc.Urgency)
			assert.Equal(t, tt.stage, qc.BuyingStage)
			assert.Equal(t, tt.risk, qc.FalsePositiveRisk)
		})
	}
}

func TestRuleEnricher_StripsHTML(t *testing.T) {
	e := NewRuleEnricher()
	qc, err := e.Enrich(context.Background(), models.Signal{
		Type:    models.SignalLinkedInEngagement,
		Action:  "commented",
		Content: "<p>We need to <b>integrate</b> faster</p><script>track()</script>",
	}, models.Prospect{Company: "Acme"})
	require.NoError(t, err)

	require.Len(t, qc.PainPoints, 1)
	assert.Equal(t, "We need to integrate faster", qc.PainPoints[0])
}

func TestRuleEnricher_FreeMailOpen(t *testing.T) {
	e := NewRuleEnricher()
	qc, err := e.Enrich(context.Background(), models.Signal{
		Type:   models.SignalEmailInteraction,
		Action: "opened",
		Email:  "someone@gmail.com",
		Count:  1,
	}, models.Prospect{Company: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, models.LevelMedium, qc.FalsePositiveRisk)
	assert.Equal(t, models.StageAwareness, qc.BuyingStage)
}

func TestRuleEnricher_Deterministic(t *testing.T) {
	ts := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	signal := models.Signal{
		Type:      models.SignalLinkedInEngagement,
		Action:    "commented",
		Content:   painfulComment,
		Timestamp: &ts,
	}

	e := NewRuleEnricher()
	first, err := e.Enrich(context.Background(), signal, models.Prospect{Company: "Acme"})
	require.NoError(t, err)
	second, err := e.Enrich(context.Background(), signal, models.Prospect{Company: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHasCompetitorIndicator(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     bool
	}{
		{"nil metadata", nil, false},
		{"boolean flag", map[string]any{"is_competitor": true}, true},
		{"false flag", map[string]any{"competitor": false}, false},
		{"string flag", map[string]any{"isCompetitor": "yes"}, true},
		{"category value", map[string]any{"visitor_category": "Competitor"}, true},
		{"unrelated", map[string]any{"visitor_category": "customer"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCompetitorIndicator(tt.metadata))
		})
	}
}
