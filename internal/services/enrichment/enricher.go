// Package enrichment derives the qualitative context of a signal, either with
// a remote LLM or with deterministic keyword rules.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/intentrank/internal/models"
)

var (
	// ErrMalformedResponse is returned when an enrichment reply cannot be
	// parsed or fails validation
	ErrMalformedResponse = errors.New("malformed enrichment response")

	// ErrNoContext is returned when an enricher produced nothing
	ErrNoContext = errors.New("enricher returned no context")
)

// DefaultConcurrency bounds concurrent enrichment calls per request
const DefaultConcurrency = 4

// Enricher produces the qualitative context of one signal
type Enricher interface {
	Enrich(ctx context.Context, signal models.Signal, prospect models.Prospect) (*models.QualitativeContext, error)
	Name() string
}

// SeedContext is the heuristic-only context available before enrichment
func SeedContext(urgency models.Level) models.QualitativeContext {
	return models.QualitativeContext{
		Sentiment:         models.SentimentNeutral,
		PainPoints:        []string{},
		Urgency:           urgency,
		Specificity:       models.LevelMedium,
		BuyingStage:       models.StageUnknown,
		FalsePositiveRisk: models.LevelMedium,
		Confidence:        0,
		Source:            models.SourceHeuristic,
	}
}

// Merge combines the seed context with an enrichment result. A nil
// enrichment keeps the seed; otherwise enrichment values replace the seed,
// falling back to the seed for fields the enrichment left empty.
func Merge(seed models.QualitativeContext, enriched *models.QualitativeContext) models.QualitativeContext {
	if enriched == nil {
		return seed
	}

	merged := *enriched
	merged.PainPoints = append([]string{}, enriched.PainPoints...)
	if len(enriched.KeyInsights) > 0 {
		merged.KeyInsights = append([]string{}, enriched.KeyInsights...)
	}
	if merged.Urgency == "" {
		merged.Urgency = seed.Urgency
	}
	if merged.Specificity == "" {
		merged.Specificity = seed.Specificity
	}
	if merged.BuyingStage == "" {
		merged.BuyingStage = seed.BuyingStage
	}
	if merged.FalsePositiveRisk == "" {
		merged.FalsePositiveRisk = seed.FalsePositiveRisk
	}
	if merged.Sentiment == "" {
		merged.Sentiment = seed.Sentiment
	}
	return merged
}

// EnrichAll enriches every analyzed signal independently. Each result is
// merged only into its own slot; a failure or panic for one signal keeps
// its seed context and never cancels the others. It returns the merged
// signals and the number of failures.
func EnrichAll(
	ctx context.Context,
	enricher Enricher,
	analyzed []models.AnalyzedSignal,
	prospect models.Prospect,
	concurrency int,
	logger arbor.ILogger,
) ([]models.AnalyzedSignal, int) {
	out := make([]models.AnalyzedSignal, len(analyzed))
	copy(out, analyzed)
	if enricher == nil || len(analyzed) == 0 {
		return out, 0
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*models.QualitativeContext, len(analyzed))
	failures := make([]error, len(analyzed))

	// No derived context: one failure never cancels siblings
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i := range analyzed {
		i := i
		g.Go(func() error {
			qc, err := safeEnrich(ctx, enricher, analyzed[i].RawData, prospect)
			if err == nil && qc == nil {
				err = ErrNoContext
			}
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = qc
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range out {
		if failures[i] != nil {
			failed++
			logger.Warn().
				Int("signal_index", i).
				Str("signal_type", string(out[i].RawData.Type)).
				Str("enricher", enricher.Name()).
				Err(failures[i]).
				Msg("Signal enrichment failed, keeping heuristic context")
			continue
		}
		out[i].QualitativeContext = Merge(out[i].QualitativeContext, results[i])
		out[i].Enriched = true
	}

	logger.Debug().
		Str("enricher", enricher.Name()).
		Int("signals", len(out)).
		Int("failed", failed).
		Msg("Enrichment complete")

	return out, failed
}

func safeEnrich(ctx context.Context, enricher Enricher, signal models.Signal, prospect models.Prospect) (qc *models.QualitativeContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 2048)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("enricher panic: %v\n%s", r, buf[:n])
		}
	}()
	return enricher.Enrich(ctx, signal, prospect)
}
