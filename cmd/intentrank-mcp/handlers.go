package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
	"github.com/ternarybob/intentrank/internal/services/report"
)

// Scorer runs the scoring pipeline
type Scorer interface {
	Run(ctx context.Context, signals []models.Signal, prospect models.Prospect, opts pipeline.Options) (*models.AnalysisResult, error)
}

// PatternSource exposes the active pattern library
type PatternSource interface {
	Patterns() []models.Pattern
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleScoreSignals implements the score_signals tool
func handleScoreSignals(scorer Scorer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("request")
		if err != nil || raw == "" {
			return textResult("Error: request parameter is required"), nil
		}

		var req models.AnalysisRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return textResult(fmt.Sprintf("Error: request is not valid JSON: %v", err)), nil
		}

		opts := pipeline.Options{GenerateMessage: request.GetBool("generate_message", false)}
		result, err := scorer.Run(ctx, req.Signals, req.Prospect, opts)
		if err != nil {
			logger.Warn().Err(err).Msg("score_signals failed")
			return textResult(fmt.Sprintf("Scoring error: %v", err)), nil
		}

		md, err := report.Markdown(result, req.Prospect)
		if err != nil {
			logger.Error().Err(err).Msg("Report rendering failed")
			return textResult(fmt.Sprintf("Report error: %v", err)), nil
		}
		return textResult(md), nil
	}
}

// handleListPatterns implements the list_patterns tool
func handleListPatterns(source PatternSource) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := yaml.Marshal(map[string]interface{}{"patterns": source.Patterns()})
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("## Pattern Library (%d patterns)\n\n```yaml\n%s```\n", len(source.Patterns()), data)), nil
	}
}
