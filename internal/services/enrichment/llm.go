package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/llm"
)

// DefaultTimeout bounds a single enrichment call
const DefaultTimeout = 20 * time.Second

const enrichmentSystemInstruction = `You are a B2B sales intelligence analyst. You read one buyer-intent signal and
describe the intent behind it. Respond with a single JSON object and nothing else.`

var replyValidator = validator.New()

// llmReply is the JSON object an LLM enrichment call must return. Every
// field except keyInsights is required and unknown keys are rejected.
type llmReply struct {
	Sentiment         string   `json:"sentiment" validate:"required,oneof=positive neutral negative"`
	PainPoints        []string `json:"painPoints" validate:"required"`
	Urgency           string   `json:"urgency" validate:"required,oneof=low medium high"`
	Specificity       string   `json:"specificity" validate:"required,oneof=low medium high"`
	BuyingStage       string   `json:"buyingStage" validate:"required,oneof=awareness consideration decision unknown"`
	FalsePositiveRisk string   `json:"falsePositiveRisk" validate:"required,oneof=low medium high"`
	Confidence        *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	KeyInsights       []string `json:"keyInsights"`
}

// enrichmentSchema constrains Gemini output to the llmReply shape
var enrichmentSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"sentiment":         map[string]interface{}{"type": "string", "enum": []string{"positive", "neutral", "negative"}},
		"painPoints":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"urgency":           map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
		"specificity":       map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
		"buyingStage":       map[string]interface{}{"type": "string", "enum": []string{"awareness", "consideration", "decision", "unknown"}},
		"falsePositiveRisk": map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
		"confidence":        map[string]interface{}{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"keyInsights":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
	"required": []string{"sentiment", "painPoints", "urgency", "specificity", "buyingStage", "falsePositiveRisk", "confidence"},
}

var typeGuidance = map[models.SignalType]string{
	models.SignalLinkedInEngagement: "Comments that describe a concrete problem indicate more intent than likes or reactions.",
	models.SignalWebsiteVisit:       "Pricing, demo and comparison pages indicate late-stage interest. Short visits and high bounce rates suggest noise.",
	models.SignalContentDownload:    "ROI calculators, buyer's guides and case studies are bottom of funnel. Blog posts and ebooks are top of funnel.",
	models.SignalEmailInteraction:   "Replies outweigh clicks, clicks outweigh opens. A single open is weak evidence.",
	models.SignalJobChange:          "New leaders often re-evaluate their tool stack in the first 90 days.",
	models.SignalWebinarAttendance:  "Attending live and asking questions indicates more intent than registering.",
	models.SignalFundingRound:       "Fresh funding usually means budget for new tooling.",
	models.SignalHiringActivity:     "Hiring for the roles the product serves indicates a scaling need.",
	models.SignalReviewSiteActivity: "Comparing vendors on review sites indicates active evaluation.",
}

// LLMEnricher asks a remote model for the qualitative context of a signal
type LLMEnricher struct {
	generator llm.ContentGenerator
	model     string
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    arbor.ILogger
}

// LLMEnricherOption configures an LLMEnricher
type LLMEnricherOption func(*LLMEnricher)

// WithModel selects the model; a provider prefix such as "claude/" is allowed
func WithModel(model string) LLMEnricherOption {
	return func(e *LLMEnricher) { e.model = model }
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) LLMEnricherOption {
	return func(e *LLMEnricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRateLimit caps calls per second across all goroutines. Zero or less
// disables limiting.
func WithRateLimit(perSecond float64) LLMEnricherOption {
	return func(e *LLMEnricher) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		} else {
			e.limiter = nil
		}
	}
}

// NewLLMEnricher creates an enricher backed by the given generator
func NewLLMEnricher(generator llm.ContentGenerator, logger arbor.ILogger, opts ...LLMEnricherOption) *LLMEnricher {
	e := &LLMEnricher{
		generator: generator,
		timeout:   DefaultTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name identifies the strategy in logs
func (e *LLMEnricher) Name() string {
	return "llm"
}

// Enrich implements Enricher. Any transport error, timeout or unusable reply
// is returned as an error.
func (e *LLMEnricher) Enrich(ctx context.Context, signal models.Signal, prospect models.Prospect) (*models.QualitativeContext, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt, err := buildPrompt(signal, prospect)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.generator.GenerateContent(callCtx, &llm.ContentRequest{
		Prompt:            prompt,
		Model:             e.model,
		Temperature:       0.2,
		MaxTokens:         1024,
		SystemInstruction: enrichmentSystemInstruction,
		OutputSchema:      enrichmentSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment call failed: %w", err)
	}

	e.logger.Trace().
		Str("signal_type", string(signal.Type)).
		Str("provider", string(resp.Provider)).
		Dur("elapsed", time.Since(start)).
		Msg("Enrichment reply received")

	return parseReply(resp.Text)
}

func buildPrompt(signal models.Signal, prospect models.Prospect) (string, error) {
	promptSignal := signal
	promptSignal.Content = promptContent(signal.Content)

	signalJSON, err := json.MarshalIndent(promptSignal, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode signal: %w", err)
	}
	prospectJSON, err := json.MarshalIndent(prospect, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode prospect: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analyze this buyer-intent signal.\n\n")
	b.WriteString("## Signal\n```json\n")
	b.Write(signalJSON)
	b.WriteString("\n```\n\n## Prospect\n```json\n")
	b.Write(prospectJSON)
	b.WriteString("\n```\n\n")
	if guidance, ok := typeGuidance[signal.Type]; ok {
		b.WriteString("## Guidance\n")
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}
	b.WriteString(`## Output
Return a JSON object with these fields:
- sentiment: positive | neutral | negative
- painPoints: array of short pain point statements quoted or paraphrased from the content
- urgency: low | medium | high
- specificity: low | medium | high
- buyingStage: awareness | consideration | decision | unknown
- falsePositiveRisk: low | medium | high (competitors, students, bots and accidental visits are high)
- confidence: number between 0 and 1
- keyInsights: array of one-line observations
`)
	return b.String(), nil
}

// parseReply extracts, decodes and validates the JSON object in a reply
func parseReply(text string) (*models.QualitativeContext, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	var reply llmReply
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := replyValidator.Struct(reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &models.QualitativeContext{
		Sentiment:         models.Sentiment(reply.Sentiment),
		PainPoints:        reply.PainPoints,
		Urgency:           models.Level(reply.Urgency),
		Specificity:       models.Level(reply.Specificity),
		BuyingStage:       models.BuyingStage(reply.BuyingStage),
		FalsePositiveRisk: models.Level(reply.FalsePositiveRisk),
		Confidence:        *reply.Confidence,
		KeyInsights:       reply.KeyInsights,
		Source:            models.SourceLLM,
	}, nil
}

// extractJSON returns the span from the first '{' to the last '}', which
// tolerates code fences and prose around the object
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
