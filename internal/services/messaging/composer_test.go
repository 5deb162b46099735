package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/llm"
)

type fakeGenerator struct {
	text    string
	err     error
	request *llm.ContentRequest
}

func (f *fakeGenerator) GenerateContent(_ context.Context, req *llm.ContentRequest) (*llm.ContentResponse, error) {
	f.request = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ContentResponse{Text: f.text, Provider: llm.ProviderClaude, Model: "fake-1"}, nil
}

func withPains(pains ...string) []models.AnalyzedSignal {
	return []models.AnalyzedSignal{{QualitativeContext: models.QualitativeContext{PainPoints: pains}}}
}

func testDraft() Draft {
	return Draft{
		Prospect: models.Prospect{Company: "Acme", Role: "VP Sales"},
		Quality:  models.QualityScoreResult{PriorityLevel: models.PriorityUrgent},
		Action: models.RecommendedAction{
			Channel:        "linkedin",
			MessagingAngle: "quick_roi",
			DoNotMention:   []string{"Specific pages visited or number of visits"},
		},
		Signals: withPains("manual research takes hours"),
	}
}

func TestTemplateComposer(t *testing.T) {
	msg, err := NewTemplateComposer().Compose(context.Background(), testDraft())
	require.NoError(t, err)

	assert.Contains(t, msg, "VP Sales")
	assert.Contains(t, msg, angleOpeners["quick_roi"])
	assert.Contains(t, msg, `"manual research takes hours"`)
	assert.Contains(t, msg, "at Acme?")

	again, err := NewTemplateComposer().Compose(context.Background(), testDraft())
	require.NoError(t, err)
	assert.Equal(t, msg, again)
}

func TestTemplateComposer_UnknownAngle(t *testing.T) {
	draft := Draft{Action: models.RecommendedAction{MessagingAngle: "something_new"}}
	msg, err := NewTemplateComposer().Compose(context.Background(), draft)
	require.NoError(t, err)
	assert.Contains(t, msg, angleOpeners["general_value_prop"])
	assert.Contains(t, msg, "Would a short call next week be useful?")
}

func TestTopPainPoint(t *testing.T) {
	signals := append(withPains("b pain", "a pain"), withPains("b pain")...)
	assert.Equal(t, "b pain", TopPainPoint(signals))
	assert.Equal(t, "a pain", TopPainPoint(withPains("b pain", "a pain")))
	assert.Empty(t, TopPainPoint(nil))
}

func TestLLMComposer(t *testing.T) {
	gen := &fakeGenerator{text: "  Hi there, quick question.  "}
	c := NewLLMComposer(gen, "claude-3-5-haiku", 0, arbor.NewLogger())

	msg, err := c.Compose(context.Background(), testDraft())
	require.NoError(t, err)
	assert.Equal(t, "Hi there, quick question.", msg)

	require.NotNil(t, gen.request)
	assert.Equal(t, "claude-3-5-haiku", gen.request.Model)
	assert.Contains(t, gen.request.Prompt, "quick_roi")
	assert.Contains(t, gen.request.Prompt, "manual research takes hours")
	assert.Contains(t, gen.request.Prompt, "skip the subject line")
}

func TestLLMComposer_Failures(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewLLMComposer(&fakeGenerator{err: boom}, "", 0, arbor.NewLogger()).Compose(context.Background(), testDraft())
	assert.ErrorIs(t, err, boom)

	_, err = NewLLMComposer(&fakeGenerator{text: "   "}, "", 0, arbor.NewLogger()).Compose(context.Background(), testDraft())
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
