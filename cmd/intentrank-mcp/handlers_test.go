package main

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/services/enrichment"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleScoreSignals(t *testing.T) {
	p := pipeline.New(pipeline.DefaultConfig(), enrichment.NewRuleEnricher(), arbor.NewLogger())
	handler := handleScoreSignals(p, arbor.NewLogger())

	ts := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	request := `{"prospect":{"company":"Acme","role":"VP Sales"},"signals":[{"type":"website_visit","page":"/pricing","duration":200,"timestamp":"` + ts + `"}]}`

	out := callTool(t, handler, map[string]any{"request": request})
	assert.Contains(t, out, "# Intent Analysis: Acme")
	assert.Contains(t, out, "## Recommended Action")

	assert.Contains(t, callTool(t, handler, map[string]any{}), "request parameter is required")
	assert.Contains(t, callTool(t, handler, map[string]any{"request": "{nope"}), "not valid JSON")
	assert.Contains(t, callTool(t, handler, map[string]any{"request": `{"prospect":{"company":"Acme"},"signals":[]}`}), "invalid analysis request")
}

func TestHandleListPatterns(t *testing.T) {
	p := pipeline.New(pipeline.DefaultConfig(), nil, arbor.NewLogger())

	out := callTool(t, handleListPatterns(p), map[string]any{})
	assert.Contains(t, out, "Pattern Library (5 patterns)")
	assert.Contains(t, out, "ready_to_buy")
}
