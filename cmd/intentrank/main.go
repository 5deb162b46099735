package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/app"
	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths

	inputFile    = flag.String("input", "", "Analysis request file, JSON or YAML (default: stdin)")
	outputFile   = flag.String("output", "", "Write the JSON result here (default: stdout)")
	reportFile   = flag.String("report", "", "Write a report; .pdf renders PDF, anything else Markdown")
	withMessage  = flag.Bool("message", false, "Draft an outreach message for actionable results")
	strategy     = flag.String("strategy", "", "Enrichment strategy: rules or llm (overrides config)")
	logLevel     = flag.String("log-level", "", "Log level (overrides config)")
	batchInput   = flag.String("batch", "", "Score every request in a batch file")
	batchOutput  = flag.String("batch-output", "", "Write batch outcomes here (default: stdout)")
	schedule     = flag.String("schedule", "", "Cron expression for repeated batch runs (requires -batch and -batch-output)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	version := common.ResolveVersion()
	if *showVersion || *showVersionV {
		fmt.Printf("IntentRank version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("intentrank.toml"); err == nil {
			configFiles = append(configFiles, "intentrank.toml")
		}
	}

	// 1. defaults -> files -> env
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// 2. CLI flags win
	common.ApplyFlagOverrides(config, common.FlagOverrides{
		Strategy:    *strategy,
		LogLevel:    *logLevel,
		BatchInput:  *batchInput,
		BatchOutput: *batchOutput,
		Schedule:    *schedule,
	})
	if err := config.Validate(); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	// 3. Logger, then banner
	logger := common.InitLogger(config)
	common.PrintBanner(version, config, logger)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{GenerateMessage: *withMessage}

	switch {
	case config.Batch.Schedule != "":
		err = runScheduled(ctx, application, opts)
	case config.Batch.InputFile != "":
		err = runBatch(ctx, application, opts)
	default:
		err = runSingle(ctx, application, opts)
	}

	if err != nil {
		logger.Error().Err(err).Msg("IntentRank failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		application.Close()
		os.Exit(1)
	}
}
