package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/intentrank/internal/app"
	"github.com/ternarybob/intentrank/internal/common"
)

func main() {
	var configFiles []string
	if configPath := os.Getenv("INTENTRANK_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("intentrank.toml"); err == nil {
		configFiles = append(configFiles, "intentrank.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so log to file only and keep it quiet
	config.Logging.Output = []string{"file"}
	config.Logging.Level = "warn"
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"intentrank",
		common.ResolveVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createScoreSignalsTool(), handleScoreSignals(application.Pipeline, logger))
	mcpServer.AddTool(createListPatternsTool(), handleListPatterns(application.Pipeline))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
