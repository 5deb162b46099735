package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/llm"
)

type fakeGenerator struct {
	reply    string
	err      error
	block    bool
	requests []*llm.ContentRequest
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error) {
	f.requests = append(f.requests, request)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ContentResponse{Text: f.reply, Provider: llm.ProviderGemini, Model: "fake"}, nil
}

const validReply = "```json\n" + `{
  "sentiment": "negative",
  "painPoints": ["outbound does not scale"],
  "urgency": "high",
  "specificity": "high",
  "buyingStage": "consideration",
  "falsePositiveRisk": "low",
  "confidence": 0.82,
  "keyInsights": ["explicit Q4 deadline"]
}` + "\n```"

func TestLLMEnricher_ValidReply(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	e := NewLLMEnricher(gen, arbor.NewLogger(), WithModel("gemini-2.5-flash"))

	qc, err := e.Enrich(context.Background(), models.Signal{
		Type:    models.SignalLinkedInEngagement,
		Action:  "commented",
		Content: painfulComment,
	}, models.Prospect{Company: "Acme", Role: "VP Sales"})
	require.NoError(t, err)

	assert.Equal(t, models.SentimentNegative, qc.Sentiment)
	assert.Equal(t, []string{"outbound does not scale"}, qc.PainPoints)
	assert.Equal(t, models.LevelHigh, qc.Urgency)
	assert.Equal(t, models.StageConsideration, qc.BuyingStage)
	assert.InDelta(t, 0.82, qc.Confidence, 1e-9)
	assert.Equal(t, models.SourceLLM, qc.Source)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.NotEmpty(t, req.OutputSchema)
	assert.Contains(t, req.Prompt, "VP Sales")
	assert.Contains(t, req.Prompt, typeGuidance[models.SignalLinkedInEngagement])
}

func TestLLMEnricher_ConvertsHTMLForPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	e := NewLLMEnricher(gen, arbor.NewLogger())

	_, err := e.Enrich(context.Background(), models.Signal{
		Type:    models.SignalEmailInteraction,
		Action:  "replied",
		Content: "<p>Hello <strong>world</strong></p>",
	}, models.Prospect{Company: "Acme"})
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].Prompt, "Hello **world**")
	assert.NotContains(t, gen.requests[0].Prompt, "<strong>")
}

func TestLLMEnricher_MalformedReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "I think this prospect is interested."},
		{"broken json", `{"sentiment": "positive", "confidence": }`},
		{"missing confidence", `{"sentiment": "positive", "urgency": "high"}`},
		{"confidence out of range", `{"sentiment": "positive", "confidence": 1.5}`},
		{"unknown enum value", `{"sentiment": "neutral", "painPoints": [], "urgency": "extreme", "specificity": "low", "buyingStage": "unknown", "falsePositiveRisk": "low", "confidence": 0.5}`},
		{"confidence only", `{"confidence": 0.5}`},
		{"unrelated keys", `{"confidence": 0.5, "verdict": "buy", "score": 99}`},
		{"missing pain points", `{"sentiment": "neutral", "urgency": "low", "specificity": "low", "buyingStage": "unknown", "falsePositiveRisk": "low", "confidence": 0.5}`},
		{"extra key beside full shape", `{"sentiment": "neutral", "painPoints": [], "urgency": "low", "specificity": "low", "buyingStage": "unknown", "falsePositiveRisk": "low", "confidence": 0.5, "score": 99}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLLMEnricher(&fakeGenerator{reply: tt.reply}, arbor.NewLogger())
			qc, err := e.Enrich(context.Background(), models.Signal{Type: models.SignalWebsiteVisit}, models.Prospect{Company: "Acme"})
			assert.Nil(t, qc)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestLLMEnricher_EmptyPainPointsAccepted(t *testing.T) {
	reply := `{"sentiment": "neutral", "painPoints": [], "urgency": "low", "specificity": "low", "buyingStage": "awareness", "falsePositiveRisk": "medium", "confidence": 0.4}`
	e := NewLLMEnricher(&fakeGenerator{reply: reply}, arbor.NewLogger())

	qc, err := e.Enrich(context.Background(), models.Signal{Type: models.SignalWebsiteVisit}, models.Prospect{Company: "Acme"})
	require.NoError(t, err)
	assert.Empty(t, qc.PainPoints)
	assert.NotNil(t, qc.PainPoints)
	assert.Equal(t, models.StageAwareness, qc.BuyingStage)
}

func TestLLMEnricher_TransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	e := NewLLMEnricher(&fakeGenerator{err: transportErr}, arbor.NewLogger())

	_, err := e.Enrich(context.Background(), models.Signal{Type: models.SignalWebsiteVisit}, models.Prospect{Company: "Acme"})
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestLLMEnricher_Timeout(t *testing.T) {
	e := NewLLMEnricher(&fakeGenerator{block: true}, arbor.NewLogger(), WithTimeout(20*time.Millisecond))

	_, err := e.Enrich(context.Background(), models.Signal{Type: models.SignalWebsiteVisit}, models.Prospect{Company: "Acme"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `Here you go: {"a":{"b":2}} done`, `{"a":{"b":2}}`, true},
		{"no object", "nothing here", "", false},
		{"reversed braces", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
