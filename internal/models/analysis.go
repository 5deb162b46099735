package models

import "time"

// Level is a three-step low/medium/high scale
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// BuyingStage is the inferred position of the prospect in the purchase journey
type BuyingStage string

const (
	StageAwareness     BuyingStage = "awareness"
	StageConsideration BuyingStage = "consideration"
	StageDecision      BuyingStage = "decision"
	StageUnknown       BuyingStage = "unknown"
)

// Sentiment of the signal content
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Velocity describes whether signal arrivals are accelerating
type Velocity string

const (
	VelocityIncreasing Velocity = "increasing"
	VelocityStable     Velocity = "stable"
	VelocityDecreasing Velocity = "decreasing"
)

// ContextSource records which stage produced a qualitative context
type ContextSource string

const (
	SourceHeuristic ContextSource = "heuristic"
	SourceRules     ContextSource = "rules"
	SourceLLM       ContextSource = "llm"
)

// TemporalFactors are the time-derived properties of one signal
type TemporalFactors struct {
	Recency   float64  `json:"recency"`
	Frequency int      `json:"frequency"`
	Velocity  Velocity `json:"velocity"`
}

// QualitativeContext is the enrichment record for one signal
type QualitativeContext struct {
	Sentiment         Sentiment     `json:"sentiment"`
	PainPoints        []string      `json:"painPoints"`
	Urgency           Level         `json:"urgency"`
	Specificity       Level         `json:"specificity"`
	BuyingStage       BuyingStage   `json:"buyingStage"`
	FalsePositiveRisk Level         `json:"falsePositiveRisk"`
	Confidence        float64       `json:"confidence"`
	KeyInsights       []string      `json:"keyInsights,omitempty"`
	Source            ContextSource `json:"source"`
}

// AnalyzedSignal is a signal together with everything derived from it
type AnalyzedSignal struct {
	Index              int                `json:"index"`
	RawData            Signal             `json:"rawData"`
	QuantitativeScore  float64            `json:"quantitativeScore"`
	TemporalFactors    TemporalFactors    `json:"temporalFactors"`
	QualitativeContext QualitativeContext `json:"qualitativeContext"`
	Enriched           bool               `json:"enriched"`
}

// TenureWindow bounds the number of days a person has been in a role
type TenureWindow struct {
	MinDays int `json:"minDays" yaml:"minDays" toml:"min_days" validate:"gte=0"`
	MaxDays int `json:"maxDays" yaml:"maxDays" toml:"max_days" validate:"gtefield=MinDays"`
}

// MetadataMatch requires a metadata key to carry a given value
type MetadataMatch struct {
	Key   string `json:"key" yaml:"key" toml:"key" validate:"required"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Criterion is one declarative pattern condition. Only the constraints that
// are set take part in evaluation.
type Criterion struct {
	SignalType    SignalType     `json:"signalType" yaml:"signalType" toml:"signal_type" validate:"required"`
	Action        string         `json:"action,omitempty" yaml:"action,omitempty" toml:"action,omitempty"`
	PageContains  string         `json:"pageContains,omitempty" yaml:"pageContains,omitempty" toml:"page_contains,omitempty"`
	MinScore      *float64       `json:"minScore,omitempty" yaml:"minScore,omitempty" toml:"min_score,omitempty"`
	MaxDuration   *float64       `json:"maxDuration,omitempty" yaml:"maxDuration,omitempty" toml:"max_duration,omitempty"`
	MinBounceRate *float64       `json:"minBounceRate,omitempty" yaml:"minBounceRate,omitempty" toml:"min_bounce_rate,omitempty"`
	RoleTenure    *TenureWindow  `json:"roleTenure,omitempty" yaml:"roleTenure,omitempty" toml:"role_tenure,omitempty"`
	HasPainPoints *bool          `json:"hasPainPoints,omitempty" yaml:"hasPainPoints,omitempty" toml:"has_pain_points,omitempty"`
	Metadata      *MetadataMatch `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
	MinVisits     int            `json:"minVisits,omitempty" yaml:"minVisits,omitempty" toml:"min_visits,omitempty" validate:"gte=0"`
	MissingField  string         `json:"missingField,omitempty" yaml:"missingField,omitempty" toml:"missing_field,omitempty"`
}

// Pattern is a named, historically validated combination of criteria
type Pattern struct {
	ID                   string      `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name                 string      `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description          string      `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	RequiredCriteria     []Criterion `json:"requiredCriteria" yaml:"requiredCriteria" toml:"required_criteria" validate:"required,min=1,dive"`
	OptionalCriteria     []Criterion `json:"optionalCriteria,omitempty" yaml:"optionalCriteria,omitempty" toml:"optional_criteria,omitempty" validate:"dive"`
	HistoricalConversion float64     `json:"historicalConversion" yaml:"historicalConversion" toml:"historical_conversion" validate:"gte=0,lte=100"`
	AvgDaysToClose       *int        `json:"avgDaysToClose,omitempty" yaml:"avgDaysToClose,omitempty" toml:"avg_days_to_close,omitempty" validate:"omitempty,gte=0"`
	Confidence           float64     `json:"confidence" yaml:"confidence" toml:"confidence" validate:"gte=0,lte=1"`
	Weight               float64     `json:"weight" yaml:"weight" toml:"weight"`
	IsFalsePositive      bool        `json:"isFalsePositive" yaml:"isFalsePositive" toml:"is_false_positive"`
}

// MatchedPattern is a pattern judged to match the signal set of one request
type MatchedPattern struct {
	PatternID            string  `json:"patternId"`
	Name                 string  `json:"name"`
	MatchedSignals       []int   `json:"matchedSignals"`
	MatchedSignalCount   int     `json:"matchedSignalCount"`
	SatisfiedOptional    int     `json:"satisfiedOptional"`
	MatchScore           float64 `json:"matchScore"`
	Confidence           float64 `json:"confidence"`
	HistoricalConversion float64 `json:"historicalConversion"`
	AvgDaysToClose       *int    `json:"avgDaysToClose,omitempty"`
	Weight               float64 `json:"weight"`
	IsFalsePositive      bool    `json:"isFalsePositive"`
}

// Priority is the terminal classification of a scored signal cluster
type Priority string

const (
	PriorityIgnore Priority = "ignore"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Actionable reports whether the priority warrants outreach
func (p Priority) Actionable() bool {
	return p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// SignalMultipliers records the factors applied to one signal's score
type SignalMultipliers struct {
	Urgency           float64 `json:"urgency"`
	Specificity       float64 `json:"specificity"`
	BuyingStage       float64 `json:"buyingStage"`
	FalsePositiveRisk float64 `json:"falsePositiveRisk"`
	Recency           float64 `json:"recency"`
	Velocity          float64 `json:"velocity"`
}

// SignalContribution is one entry of the quality score breakdown
type SignalContribution struct {
	Index             int               `json:"index"`
	Type              SignalType        `json:"type"`
	QuantitativeScore float64           `json:"quantitativeScore"`
	AdjustedScore     float64           `json:"adjustedScore"`
	Weight            float64           `json:"weight"`
	Multipliers       SignalMultipliers `json:"multipliers"`
}

// ComponentWeights are the top-level fusion weights
type ComponentWeights struct {
	Signal  float64 `json:"signal" toml:"signal"`
	Pattern float64 `json:"pattern" toml:"pattern"`
	Fit     float64 `json:"fit" toml:"fit"`
}

// ScoreComponents are the three raw component scores and the weights used
type ScoreComponents struct {
	Signal  float64          `json:"signal"`
	Pattern float64          `json:"pattern"`
	Fit     float64          `json:"fit"`
	Weights ComponentWeights `json:"weights"`
}

// QualityScoreResult is the fused quality assessment of a signal cluster
type QualityScoreResult struct {
	QualityScore    int                  `json:"qualityScore"`
	Confidence      Level                `json:"confidence"`
	PriorityLevel   Priority             `json:"priorityLevel"`
	Breakdown       []SignalContribution `json:"breakdown"`
	MatchedPatterns []MatchedPattern     `json:"matchedPatterns"`
	Reasoning       string               `json:"reasoning"`
	Components      ScoreComponents      `json:"components"`
}

// NextStep is one ordered follow-up action
type NextStep struct {
	Action string `json:"action"`
	Timing string `json:"timing"`
}

// DealValueRange is an estimated deal size band
type DealValueRange struct {
	Low      int    `json:"low"`
	High     int    `json:"high"`
	Currency string `json:"currency"`
}

// RecommendedAction is the structured next-action recommendation
type RecommendedAction struct {
	Type                  string         `json:"type"`
	Channel               string         `json:"channel,omitempty"`
	Timing                string         `json:"timing,omitempty"`
	MessagingAngle        string         `json:"messagingAngle,omitempty"`
	DoNotMention          []string       `json:"doNotMention,omitempty"`
	NextSteps             []NextStep     `json:"nextSteps"`
	RedFlags              []string       `json:"redFlags"`
	ConversionProbability float64        `json:"conversionProbability"`
	EstimatedDaysToClose  int            `json:"estimatedDaysToClose"`
	EstimatedDealValue    DealValueRange `json:"estimatedDealValue"`
}

// AnalysisResult is the merged output of one pipeline run
type AnalysisResult struct {
	AnalysisID  string    `json:"analysisId"`
	GeneratedAt time.Time `json:"generatedAt"`
	QualityScoreResult
	RecommendedAction
	AnalyzedSignals    []AnalyzedSignal `json:"analyzedSignals"`
	EnrichmentFailures int              `json:"enrichmentFailures"`
	Message            string           `json:"message,omitempty"`
}
