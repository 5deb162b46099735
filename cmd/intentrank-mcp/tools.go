package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createScoreSignalsTool returns the score_signals tool definition
func createScoreSignalsTool() mcp.Tool {
	return mcp.NewTool("score_signals",
		mcp.WithDescription("Score a cluster of buyer-intent signals for one prospect and recommend the next sales action"),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description(`Analysis request as JSON: {"prospect": {"company", "role", "industry", "companySize"}, "signals": [{"type", "timestamp", "action", "content", "page", ...}]}`),
		),
		mcp.WithBoolean("generate_message",
			mcp.Description("Draft an outreach message when the priority is medium or above (default: false)"),
		),
	)
}

// createListPatternsTool returns the list_patterns tool definition
func createListPatternsTool() mcp.Tool {
	return mcp.NewTool("list_patterns",
		mcp.WithDescription("List the active library of historically validated signal patterns"),
	)
}
