package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/services/messaging"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

func clearKeys(t *testing.T) {
	for _, name := range []string{"INTENTRANK_GEMINI_API_KEY", "GEMINI_API_KEY", "INTENTRANK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestNew_RuleStrategy(t *testing.T) {
	clearKeys(t)

	a, err := New(common.NewDefaultConfig(), arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "rules", a.Enricher.Name())
	assert.IsType(t, &messaging.TemplateComposer{}, a.Composer)
	assert.NotEmpty(t, a.Pipeline.Patterns())
}

func TestNew_LLMStrategyWithoutKeyFallsBack(t *testing.T) {
	clearKeys(t)
	cfg := common.NewDefaultConfig()
	cfg.Enrichment.Strategy = common.StrategyLLM

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "rules", a.Enricher.Name())
}

func TestNew_LLMStrategyWithKey(t *testing.T) {
	clearKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg := common.NewDefaultConfig()
	cfg.Enrichment.Strategy = common.StrategyLLM
	cfg.Enrichment.Model = "claude-3-5-haiku-20241022"

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "llm", a.Enricher.Name())
	assert.IsType(t, &messaging.LLMComposer{}, a.Composer)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, arbor.NewLogger())
	assert.Error(t, err)
}

func TestScheduleBatch(t *testing.T) {
	clearKeys(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "requests.json")
	output := filepath.Join(dir, "outcomes.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"id":"acme","prospect":{"company":"Acme"},"signals":[{"type":"website_visit","page":"/pricing","duration":180}]}]`), 0644))

	cfg := common.NewDefaultConfig()
	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.ErrorContains(t, a.ScheduleBatch(pipeline.Options{}), "input file is required")
	assert.Nil(t, a.BatchStatus())

	cfg.Batch.InputFile = input
	cfg.Batch.Schedule = "0 6 * * *"
	assert.ErrorContains(t, a.ScheduleBatch(pipeline.Options{}), "output file is required")

	cfg.Batch.OutputFile = output
	require.NoError(t, a.ScheduleBatch(pipeline.Options{}))
	assert.True(t, a.Scheduler.IsRunning())

	// The first run happens immediately and its outcomes are written
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "acme"`)

	status := a.BatchStatus()
	require.NotNil(t, status)
	assert.Equal(t, 1, status.Runs)
	assert.Empty(t, status.LastError)
	assert.NotNil(t, status.NextRun)

	require.NoError(t, a.Close())
	assert.False(t, a.Scheduler.IsRunning())
}

func TestScheduleBatch_FirstRunFailureRecorded(t *testing.T) {
	clearKeys(t)
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Batch.InputFile = filepath.Join(dir, "missing.json")
	cfg.Batch.OutputFile = filepath.Join(dir, "outcomes.json")
	cfg.Batch.Schedule = "0 6 * * *"

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.ScheduleBatch(pipeline.Options{}))

	status := a.BatchStatus()
	require.NotNil(t, status)
	assert.Equal(t, 1, status.Runs)
	assert.NotEmpty(t, status.LastError)
}
