package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective scoring setup
func PrintBanner(version string, config *Config, logger arbor.ILogger) {
	banner.PrintSimple("IntentRank", version)

	logger.Info().
		Str("version", version).
		Str("strategy", string(config.Enrichment.Strategy)).
		Str("provider", string(config.LLM.DefaultProvider)).
		Str("patterns_file", config.Scoring.PatternsFile).
		Str("weights_file", config.Scoring.WeightsFile).
		Msg("IntentRank starting")
}
