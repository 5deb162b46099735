package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/enrichment"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

type fakeScorer struct{}

func (fakeScorer) Run(_ context.Context, signals []models.Signal, prospect models.Prospect, _ pipeline.Options) (*models.AnalysisResult, error) {
	if prospect.Company == "" {
		return nil, models.ErrInvalidRequest
	}
	return &models.AnalysisResult{
		QualityScoreResult: models.QualityScoreResult{QualityScore: len(signals) * 10},
	}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_KeepsOrderAndIsolatesFailures(t *testing.T) {
	items := []Item{
		{ID: "a", Prospect: models.Prospect{Company: "Acme"}, Signals: make([]models.Signal, 1)},
		{Prospect: models.Prospect{}, Signals: make([]models.Signal, 2)},
		{ID: "c", Prospect: models.Prospect{Company: "Globex"}, Signals: make([]models.Signal, 3)},
	}

	outcomes, summary := NewRunner(fakeScorer{}, 0, arbor.NewLogger()).Run(context.Background(), items, pipeline.Options{})

	require.Len(t, outcomes, 3)
	assert.Equal(t, "a", outcomes[0].ID)
	assert.Equal(t, 10, outcomes[0].Result.QualityScore)
	assert.Equal(t, "2", outcomes[1].ID)
	assert.Nil(t, outcomes[1].Result)
	assert.Contains(t, outcomes[1].Error, "invalid analysis request")
	assert.Equal(t, 30, outcomes[2].Result.QualityScore)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Regexp(t, `^bat_`, summary.BatchID)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, summary := NewRunner(fakeScorer{}, 1, arbor.NewLogger()).Run(ctx, []Item{{ID: "a", Prospect: models.Prospect{Company: "Acme"}}}, pipeline.Options{})
	assert.Equal(t, context.Canceled.Error(), outcomes[0].Error)
	assert.Equal(t, 1, summary.Failed)
}

func TestReadItems(t *testing.T) {
	jsonPath := writeFile(t, "batch.json", `[{"id":"x","prospect":{"company":"Acme"},"signals":[{"type":"website_visit","page":"/pricing"}]}]`)
	items, err := ReadItems(jsonPath)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/pricing", items[0].Signals[0].Page)

	yamlPath := writeFile(t, "batch.yaml", `
- id: y
  prospect:
    company: Acme
    role: VP Sales
  signals:
    - type: linkedin_engagement
      action: commented
      content: We need this
`)
	items, err = ReadItems(yamlPath)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "VP Sales", items[0].Prospect.Role)
	assert.Equal(t, models.SignalLinkedInEngagement, items[0].Signals[0].Type)

	_, err = ReadItems(writeFile(t, "broken.json", `{not json`))
	assert.Error(t, err)

	_, err = ReadItems(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunFile_WithPipeline(t *testing.T) {
	input := writeFile(t, "batch.json", `[
  {"id": "strong", "prospect": {"company": "Acme", "role": "VP Sales"}, "signals": [
    {"type": "website_visit", "page": "/pricing", "duration": 200, "timestamp": "2026-10-16T08:00:00Z"}
  ]},
  {"id": "invalid", "prospect": {"company": "Acme"}, "signals": []}
]`)
	output := filepath.Join(t.TempDir(), "out.json")

	p := pipeline.New(pipeline.DefaultConfig(), enrichment.NewRuleEnricher(), arbor.NewLogger())
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	summary, err := NewRunner(p, 2, arbor.NewLogger()).RunFile(context.Background(), input, output, nil, pipeline.Options{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "strong", decoded[0]["id"])
	assert.Contains(t, decoded[0], "result")
	assert.Contains(t, decoded[1]["error"], "invalid analysis request")
}

func TestWriteOutcomes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, []Outcome{{ID: "a", Error: errors.New("bad").Error()}}))
	assert.JSONEq(t, `[{"id":"a","error":"bad"}]`, buf.String())
}
