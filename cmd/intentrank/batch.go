package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/intentrank/internal/app"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

func runBatch(ctx context.Context, a *app.App, opts pipeline.Options) error {
	bc := a.Config.Batch
	summary, err := a.Batch.RunFile(ctx, bc.InputFile, bc.OutputFile, os.Stdout, opts)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d requests failed\n", summary.Failed, summary.Total)
	}
	return nil
}

// runScheduled runs the batch on its cron schedule until interrupted
func runScheduled(ctx context.Context, a *app.App, opts pipeline.Options) error {
	if err := a.ScheduleBatch(opts); err != nil {
		return err
	}

	a.Logger.Info().
		Str("schedule", a.Config.Batch.Schedule).
		Str("input", a.Config.Batch.InputFile).
		Msg("Scheduled batch scoring running - Press Ctrl+C to stop")

	<-ctx.Done()
	a.Logger.Info().Msg("Interrupt signal received")
	a.LogBatchStatus()
	return nil
}
