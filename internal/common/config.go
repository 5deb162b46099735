package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Logging    LoggingConfig    `toml:"logging"`
	Scoring    ScoringConfig    `toml:"scoring"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Gemini     GeminiConfig     `toml:"gemini"`
	Claude     ClaudeConfig     `toml:"claude"`
	LLM        LLMConfig        `toml:"llm"`
	Batch      BatchConfig      `toml:"batch"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for console logs (default: "15:04:05")
}

// ScoringConfig points at the pattern library and weight tables
type ScoringConfig struct {
	PatternsFile        string  `toml:"patterns_file"`          // JSON, YAML or TOML pattern library (empty: built-in patterns)
	WeightsFile         string  `toml:"weights_file"`           // TOML weight tables (empty: built-in weights)
	RecencyHalfLifeDays float64 `toml:"recency_half_life_days"` // Recency decay half-life (default: 7)
}

// EnrichmentStrategy selects how qualitative context is produced
type EnrichmentStrategy string

const (
	// StrategyRules uses deterministic keyword rules (no network)
	StrategyRules EnrichmentStrategy = "rules"
	// StrategyLLM asks the configured LLM provider
	StrategyLLM EnrichmentStrategy = "llm"
)

// EnrichmentConfig controls the qualitative enrichment stage
type EnrichmentConfig struct {
	Strategy    EnrichmentStrategy `toml:"strategy"`    // "rules" or "llm" (default: "rules")
	Concurrency int                `toml:"concurrency"` // Concurrent enrichment calls per request (default: 4)
	Timeout     string             `toml:"timeout"`     // Per-call timeout as duration string (default: "20s")
	RateLimit   float64            `toml:"rate_limit"`  // LLM calls per second across requests, 0 disables (default: 2)
	Model       string             `toml:"model"`       // Model for enrichment; provider prefix allowed (default: provider model)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Default model (default: "gemini-2.5-flash")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Default model (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains provider selection and retry policy shared by all providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
	MaxRetries      int         `toml:"max_retries"`      // Retries per call (default: 2)
	InitialBackoff  string      `toml:"initial_backoff"`  // First retry wait (default: "2s")
	MaxBackoff      string      `toml:"max_backoff"`      // Retry wait cap (default: "30s")
}

// BatchConfig configures file-based batch scoring
type BatchConfig struct {
	InputFile  string `toml:"input_file"`  // JSON array of requests
	OutputFile string `toml:"output_file"` // JSON array of results (default: stdout)
	Schedule   string `toml:"schedule"`    // Cron expression for repeated runs (empty: run once)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"file"},
			TimeFormat: "15:04:05",
		},
		Scoring: ScoringConfig{
			RecencyHalfLifeDays: 7,
		},
		Enrichment: EnrichmentConfig{
			Strategy:    StrategyRules,
			Concurrency: 4,
			Timeout:     "20s",
			RateLimit:   2,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			MaxRetries:      2,
			InitialBackoff:  "2s",
			MaxBackoff:      "30s",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied by the caller with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies INTENTRANK_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Logging configuration
	if level := os.Getenv("INTENTRANK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("INTENTRANK_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		config.Logging.Output = outputs
	}

	// Scoring configuration
	if patterns := os.Getenv("INTENTRANK_PATTERNS_FILE"); patterns != "" {
		config.Scoring.PatternsFile = patterns
	}
	if weights := os.Getenv("INTENTRANK_WEIGHTS_FILE"); weights != "" {
		config.Scoring.WeightsFile = weights
	}
	if halfLife := os.Getenv("INTENTRANK_RECENCY_HALF_LIFE_DAYS"); halfLife != "" {
		if h, err := strconv.ParseFloat(halfLife, 64); err == nil {
			config.Scoring.RecencyHalfLifeDays = h
		}
	}

	// Enrichment configuration
	if strategy := os.Getenv("INTENTRANK_ENRICHMENT_STRATEGY"); strategy != "" {
		config.Enrichment.Strategy = EnrichmentStrategy(strings.ToLower(strategy))
	}
	if concurrency := os.Getenv("INTENTRANK_ENRICHMENT_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Enrichment.Concurrency = c
		}
	}
	if timeout := os.Getenv("INTENTRANK_ENRICHMENT_TIMEOUT"); timeout != "" {
		config.Enrichment.Timeout = timeout
	}
	if rateLimit := os.Getenv("INTENTRANK_ENRICHMENT_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.ParseFloat(rateLimit, 64); err == nil {
			config.Enrichment.RateLimit = r
		}
	}
	if model := os.Getenv("INTENTRANK_ENRICHMENT_MODEL"); model != "" {
		config.Enrichment.Model = model
	}

	// Provider configuration (API keys are resolved at call time by ResolveAPIKey)
	if model := os.Getenv("INTENTRANK_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if model := os.Getenv("INTENTRANK_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if provider := os.Getenv("INTENTRANK_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if retries := os.Getenv("INTENTRANK_LLM_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.LLM.MaxRetries = r
		}
	}

	// Batch configuration
	if schedule := os.Getenv("INTENTRANK_BATCH_SCHEDULE"); schedule != "" {
		config.Batch.Schedule = schedule
	}
}

// FlagOverrides carries command-line values that take precedence over
// files and environment. Zero values leave the config unchanged.
type FlagOverrides struct {
	Strategy    string
	LogLevel    string
	BatchInput  string
	BatchOutput string
	Schedule    string
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.Strategy != "" {
		config.Enrichment.Strategy = EnrichmentStrategy(strings.ToLower(flags.Strategy))
	}
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
	if flags.BatchInput != "" {
		config.Batch.InputFile = flags.BatchInput
	}
	if flags.BatchOutput != "" {
		config.Batch.OutputFile = flags.BatchOutput
	}
	if flags.Schedule != "" {
		config.Batch.Schedule = flags.Schedule
	}
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.Enrichment.Strategy {
	case StrategyRules, StrategyLLM:
	default:
		return fmt.Errorf("invalid enrichment strategy %q (want %q or %q)", c.Enrichment.Strategy, StrategyRules, StrategyLLM)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("invalid llm default_provider %q", c.LLM.DefaultProvider)
	}
	if c.Enrichment.Concurrency < 0 {
		return fmt.Errorf("enrichment concurrency must not be negative")
	}
	if _, err := time.ParseDuration(c.Enrichment.Timeout); err != nil {
		return fmt.Errorf("invalid enrichment timeout %q: %w", c.Enrichment.Timeout, err)
	}
	if c.Scoring.RecencyHalfLifeDays < 0 {
		return fmt.Errorf("recency_half_life_days must not be negative")
	}
	if c.Batch.Schedule != "" {
		if err := ValidateSchedule(c.Batch.Schedule); err != nil {
			return err
		}
		// Scheduled runs write only to the output file
		if c.Batch.InputFile == "" || c.Batch.OutputFile == "" {
			return fmt.Errorf("batch input_file and output_file are required when a schedule is set")
		}
	}
	return nil
}

// EnrichmentTimeout returns the parsed per-call timeout
func (c *Config) EnrichmentTimeout() time.Duration {
	d, err := time.ParseDuration(c.Enrichment.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → config fallback → error
func ResolveAPIKey(name string, configFallback string) (string, error) {
	// Order: application-specific name first, then the provider's standard variable
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"INTENTRANK_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"google_api_key":    {"INTENTRANK_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"INTENTRANK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"claude_api_key":    {"INTENTRANK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
