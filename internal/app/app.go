// Package app wires configuration into the scoring services shared by the
// command-line tool and the MCP server.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/services/batch"
	"github.com/ternarybob/intentrank/internal/services/enrichment"
	"github.com/ternarybob/intentrank/internal/services/llm"
	"github.com/ternarybob/intentrank/internal/services/messaging"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
	"github.com/ternarybob/intentrank/internal/services/report"
	"github.com/ternarybob/intentrank/internal/services/scheduler"
)

// BatchJobName is the scheduler job that re-runs the configured batch
const BatchJobName = "batch_scoring"

// App holds the constructed services
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Providers *llm.ProviderFactory
	Enricher  enrichment.Enricher
	Composer  messaging.Composer
	Pipeline  *pipeline.Pipeline
	Reports   *report.Service
	Batch     *batch.Runner
	Scheduler *scheduler.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Providers: llm.NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, logger),
		Reports:   report.NewService(logger),
	}

	app.Enricher = app.selectEnricher()
	app.Composer = app.selectComposer()

	scoring := pipeline.LoadConfig(cfg.Scoring, logger)
	if cfg.Enrichment.Concurrency > 0 {
		scoring.Concurrency = cfg.Enrichment.Concurrency
	}
	app.Pipeline = pipeline.New(scoring, app.Enricher, logger, pipeline.WithComposer(app.Composer))
	app.Batch = batch.NewRunner(app.Pipeline, batch.DefaultParallelism, logger)

	logger.Info().
		Str("enricher", app.Enricher.Name()).
		Int("patterns", len(scoring.Patterns)).
		Int("concurrency", scoring.Concurrency).
		Float64("half_life_days", scoring.HalfLifeDays).
		Msg("Application initialization complete")

	return app, nil
}

// selectEnricher honours the configured strategy. The llm strategy without
// credentials for the resolved provider falls back to rules.
func (a *App) selectEnricher() enrichment.Enricher {
	cfg := a.Config.Enrichment
	if cfg.Strategy != common.StrategyLLM {
		return enrichment.NewRuleEnricher()
	}

	if !a.Providers.HasCredentials(cfg.Model) {
		a.Logger.Warn().
			Str("provider", string(a.Providers.DetectProvider(cfg.Model))).
			Msg("LLM enrichment requested but no API key is configured, using rule enrichment")
		return enrichment.NewRuleEnricher()
	}

	return enrichment.NewLLMEnricher(a.Providers, a.Logger,
		enrichment.WithModel(cfg.Model),
		enrichment.WithTimeout(a.Config.EnrichmentTimeout()),
		enrichment.WithRateLimit(cfg.RateLimit),
	)
}

// selectComposer prefers the LLM composer when credentials exist
func (a *App) selectComposer() messaging.Composer {
	model := a.Config.Enrichment.Model
	if a.Providers.HasCredentials(model) {
		return messaging.NewLLMComposer(a.Providers, model, 2*a.Config.EnrichmentTimeout(), a.Logger)
	}
	return messaging.NewTemplateComposer()
}

// ScheduleBatch registers the configured batch file as a recurring job,
// starts the scheduler and runs the batch once without waiting for the
// first tick
func (a *App) ScheduleBatch(opts pipeline.Options) error {
	bc := a.Config.Batch
	if bc.InputFile == "" {
		return fmt.Errorf("batch input file is required for scheduled runs")
	}
	if bc.OutputFile == "" {
		return fmt.Errorf("batch output file is required for scheduled runs")
	}

	a.Scheduler = scheduler.NewService(a.Logger)
	err := a.Scheduler.RegisterJob(BatchJobName, bc.Schedule, "Score "+bc.InputFile, func(ctx context.Context) error {
		_, err := a.Batch.RunFile(ctx, bc.InputFile, bc.OutputFile, nil, opts)
		return err
	})
	if err != nil {
		return err
	}
	if err := a.Scheduler.Start(); err != nil {
		return err
	}

	// A failed first run is reported in the job status; later ticks retry
	_ = a.Scheduler.RunNow(BatchJobName)
	a.LogBatchStatus()
	return nil
}

// BatchStatus returns the scheduled batch job's status, or nil when no
// batch is scheduled
func (a *App) BatchStatus() *scheduler.JobStatus {
	if a.Scheduler == nil {
		return nil
	}
	status, err := a.Scheduler.GetJobStatus(BatchJobName)
	if err != nil {
		return nil
	}
	return status
}

// LogBatchStatus logs runs, last error and next run of the scheduled batch
func (a *App) LogBatchStatus() {
	status := a.BatchStatus()
	if status == nil {
		return
	}

	event := a.Logger.Info()
	if status.LastError != "" {
		event = a.Logger.Warn().Str("last_error", status.LastError)
	}
	event = event.Str("job_name", status.Name).Int("runs", status.Runs)
	if status.NextRun != nil {
		event = event.Str("next_run", status.NextRun.Format(time.RFC3339))
	}
	event.Msg("Scheduled batch status")
}

// Close releases provider clients and stops the scheduler
func (a *App) Close() error {
	if a.Scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.Scheduler.Stop(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.Providers != nil {
		if err := a.Providers.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM providers")
			return err
		}
	}
	return nil
}
