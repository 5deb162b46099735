// Package pipeline runs the full buyer-intent scoring flow for one request:
// temporal analysis, quantitative scoring, enrichment, pattern matching,
// quality scoring and action recommendation.
package pipeline

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/action"
	"github.com/ternarybob/intentrank/internal/services/enrichment"
	"github.com/ternarybob/intentrank/internal/services/messaging"
	"github.com/ternarybob/intentrank/internal/services/patterns"
	"github.com/ternarybob/intentrank/internal/services/rating"
	"github.com/ternarybob/intentrank/internal/services/scorer"
	"github.com/ternarybob/intentrank/internal/services/temporal"
)

// Options control a single run
type Options struct {
	// GenerateMessage asks the composer for an outreach message when the
	// priority is medium or above
	GenerateMessage bool
	// Now is the reference time for recency and urgency; zero means time.Now
	Now time.Time
}

// Pipeline scores signal clusters. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	cfg      *Config
	enricher enrichment.Enricher
	composer messaging.Composer
	scorer   *scorer.Scorer
	logger   arbor.ILogger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithComposer sets the outreach message composer
func WithComposer(c messaging.Composer) Option {
	return func(p *Pipeline) {
		p.composer = c
	}
}

// New creates a Pipeline. A nil cfg uses DefaultConfig; a nil enricher
// leaves every signal with its heuristic context.
func New(cfg *Config, enricher enrichment.Enricher, logger arbor.ILogger, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &Pipeline{
		cfg:      cfg,
		enricher: enricher,
		scorer:   scorer.New(logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Patterns returns the active pattern library
func (p *Pipeline) Patterns() []models.Pattern {
	return p.cfg.Patterns
}

// Run scores one request. Validation errors wrap models.ErrInvalidRequest
// and are returned before any stage runs. Enrichment failures never fail
// the run; they are counted in the result.
func (p *Pipeline) Run(ctx context.Context, signals []models.Signal, prospect models.Prospect, opts Options) (*models.AnalysisResult, error) {
	req := models.AnalysisRequest{Signals: signals, Prospect: prospect}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	analyzed := p.analyze(signals, now)

	enriched, failures := enrichment.EnrichAll(ctx, p.enricher, analyzed, prospect, p.cfg.Concurrency, p.logger)

	matches := patterns.Match(enriched, p.cfg.Patterns)
	quality := rating.CalculateQualityScore(enriched, matches, prospect, p.cfg.Weights)
	recommendation := action.Recommend(quality, enriched, prospect)

	result := &models.AnalysisResult{
		AnalysisID:         common.NewAnalysisID(),
		GeneratedAt:        now,
		QualityScoreResult: quality,
		RecommendedAction:  recommendation,
		AnalyzedSignals:    enriched,
		EnrichmentFailures: failures,
	}

	if opts.GenerateMessage {
		result.Message = p.composeMessage(ctx, result, prospect)
	}

	p.logger.Info().
		Str("analysis_id", result.AnalysisID).
		Str("company", prospect.Company).
		Int("signals", len(signals)).
		Int("patterns", len(matches)).
		Int("quality_score", quality.QualityScore).
		Str("priority", string(quality.PriorityLevel)).
		Str("confidence", string(quality.Confidence)).
		Int("enrichment_failures", failures).
		Msg("Signal cluster scored")

	return result, nil
}

// analyze runs the quantitative and temporal stages and seeds each signal's
// qualitative context with the heuristic urgency
func (p *Pipeline) analyze(signals []models.Signal, now time.Time) []models.AnalyzedSignal {
	factors := temporal.Analyze(signals, now, p.cfg.HalfLifeDays)

	analyzed := make([]models.AnalyzedSignal, len(signals))
	for i, s := range signals {
		analyzed[i] = models.AnalyzedSignal{
			Index:              i,
			RawData:            s,
			QuantitativeScore:  p.scorer.Score(s),
			TemporalFactors:    factors[i],
			QualitativeContext: enrichment.SeedContext(temporal.Urgency(s, now)),
		}
	}
	return analyzed
}

func (p *Pipeline) composeMessage(ctx context.Context, result *models.AnalysisResult, prospect models.Prospect) string {
	if p.composer == nil {
		p.logger.Debug().Msg("Message requested but no composer configured")
		return ""
	}
	if !result.PriorityLevel.Actionable() {
		return ""
	}

	msg, err := p.composer.Compose(ctx, messaging.Draft{
		Prospect: prospect,
		Quality:  result.QualityScoreResult,
		Action:   result.RecommendedAction,
		Signals:  result.AnalyzedSignals,
	})
	if err != nil {
		p.logger.Warn().
			Str("analysis_id", result.AnalysisID).
			Err(err).
			Msg("Message composition failed")
		return ""
	}
	return msg
}
