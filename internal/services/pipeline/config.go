package pipeline

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/enrichment"
	"github.com/ternarybob/intentrank/internal/services/patterns"
	"github.com/ternarybob/intentrank/internal/services/rating"
	"github.com/ternarybob/intentrank/internal/services/temporal"
)

// Config is the read-only scoring configuration shared by every run.
// Build it once per process and pass it to New.
type Config struct {
	Weights      rating.Weights
	Patterns     []models.Pattern
	HalfLifeDays float64
	Concurrency  int
}

// DefaultConfig uses the built-in weights and pattern library
func DefaultConfig() *Config {
	return &Config{
		Weights:      rating.DefaultWeights(),
		Patterns:     patterns.DefaultPatterns(),
		HalfLifeDays: temporal.DefaultHalfLifeDays,
		Concurrency:  enrichment.DefaultConcurrency,
	}
}

// LoadConfig reads the pattern library and weight tables named by the
// [scoring] section. Unusable files fall back to the built-in defaults and
// are logged once here.
func LoadConfig(scoring common.ScoringConfig, logger arbor.ILogger) *Config {
	cfg := &Config{
		Weights:      rating.LoadWeights(scoring.WeightsFile, logger),
		Patterns:     patterns.Load(scoring.PatternsFile, logger),
		HalfLifeDays: scoring.RecencyHalfLifeDays,
		Concurrency:  enrichment.DefaultConcurrency,
	}
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = temporal.DefaultHalfLifeDays
	}
	return cfg
}
