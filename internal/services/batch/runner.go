// Package batch scores many analysis requests from one file.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
)

// DefaultParallelism bounds how many requests of a batch are scored at once
const DefaultParallelism = 2

// Scorer runs the scoring pipeline for one request
type Scorer interface {
	Run(ctx context.Context, signals []models.Signal, prospect models.Prospect, opts pipeline.Options) (*models.AnalysisResult, error)
}

// Item is one request of a batch file
type Item struct {
	ID       string          `json:"id" yaml:"id"`
	Prospect models.Prospect `json:"prospect" yaml:"prospect"`
	Signals  []models.Signal `json:"signals" yaml:"signals"`
}

// Outcome is the result or error for one item
type Outcome struct {
	ID     string                 `json:"id"`
	Result *models.AnalysisResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// Summary describes a completed batch run
type Summary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Runner scores batches with a bounded number of concurrent requests
type Runner struct {
	scorer      Scorer
	parallelism int
	logger      arbor.ILogger
}

// NewRunner creates a Runner. Non-positive parallelism uses DefaultParallelism.
func NewRunner(scorer Scorer, parallelism int, logger arbor.ILogger) *Runner {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Runner{scorer: scorer, parallelism: parallelism, logger: logger}
}

// ReadItems decodes a batch from a JSON or YAML file, chosen by extension
func ReadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}

	var items []Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}
	return items, nil
}

// Run scores every item. Outcomes keep the input order; an item without an
// id is given its 1-based position.
func (r *Runner) Run(ctx context.Context, items []Item, opts pipeline.Options) ([]Outcome, Summary) {
	start := time.Now()
	summary := Summary{BatchID: common.NewBatchID(), Total: len(items)}
	outcomes := make([]Outcome, len(items))

	var g errgroup.Group
	g.SetLimit(r.parallelism)

	for i := range items {
		i := i
		g.Go(func() error {
			item := items[i]
			id := item.ID
			if id == "" {
				id = fmt.Sprintf("%d", i+1)
			}
			outcomes[i] = Outcome{ID: id}

			if err := ctx.Err(); err != nil {
				outcomes[i].Error = err.Error()
				return nil
			}

			result, err := r.scorer.Run(ctx, item.Signals, item.Prospect, opts)
			if err != nil {
				outcomes[i].Error = err.Error()
				r.logger.Warn().
					Str("batch_id", summary.BatchID).
					Str("item_id", id).
					Err(err).
					Msg("Batch item failed")
				return nil
			}
			outcomes[i].Result = result
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Error != "" {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	summary.Duration = time.Since(start)

	r.logger.Info().
		Str("batch_id", summary.BatchID).
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Batch run completed")

	return outcomes, summary
}

// RunFile reads a batch file, scores it and writes the outcomes as JSON.
// An empty output path writes to stdout, or nowhere when stdout is nil.
func (r *Runner) RunFile(ctx context.Context, inputPath, outputPath string, stdout io.Writer, opts pipeline.Options) (Summary, error) {
	items, err := ReadItems(inputPath)
	if err != nil {
		return Summary{}, err
	}

	outcomes, summary := r.Run(ctx, items, opts)

	if outputPath == "" {
		if stdout == nil {
			return summary, nil
		}
		return summary, WriteOutcomes(stdout, outcomes)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return summary, fmt.Errorf("failed to create batch output %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := WriteOutcomes(f, outcomes); err != nil {
		return summary, err
	}
	return summary, nil
}

// WriteOutcomes encodes outcomes as an indented JSON array
func WriteOutcomes(w io.Writer, outcomes []Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		return fmt.Errorf("failed to write batch outcomes: %w", err)
	}
	return nil
}
