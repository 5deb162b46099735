package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/scorer"
)

// RuleEnricher derives the qualitative context from keyword tables and
// behavioral heuristics without any external call. Output depends only on
// the signal, so repeated runs are identical.
type RuleEnricher struct{}

// NewRuleEnricher creates the deterministic fallback enricher
func NewRuleEnricher() *RuleEnricher {
	return &RuleEnricher{}
}

// Name identifies the strategy in logs
func (e *RuleEnricher) Name() string {
	return "rules"
}

const maxPainPoints = 5

var (
	painKeywords = []string{
		"struggl", "challenge", "problem", "issue", "difficult", "frustrat", "pain",
		"slow", "manual", "bottleneck", "scale", "scaling", "can't", "cannot",
		"need", "looking for", "hard to", "waste", "inefficien", "integrat", "broken",
	}

	urgencyKeywords = []string{
		"asap", "urgent", "immediately", "this quarter", "this week", "this month",
		"deadline", "right away", "quickly", "soon", "by end of", "priority",
	}

	decisionKeywords      = []string{"pricing", "price", "quote", "contract", "proposal", "budget approved", "purchase", "procure", "demo", " trial"}
	considerationKeywords = []string{"compare", "comparison", "evaluat", "alternative", " vs ", "options", "shortlist", "recommend"}

	positiveKeywords = []string{"great", "love", "excited", "interested", "impressed", "helpful", "thanks", "thank you", "looking forward", "useful", "amazing"}
	negativeKeywords = []string{"frustrat", "annoy", "disappoint", "problem", "struggl", "hate", "broken", "terrible", "awful", "waste"}

	freeMailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "aol.com", "icloud.com", "proton.me", "protonmail.com"}

	competitorKeys = []string{"competitor", "is_competitor", "isCompetitor"}
)

// Enrich implements Enricher
func (e *RuleEnricher) Enrich(_ context.Context, signal models.Signal, _ models.Prospect) (*models.QualitativeContext, error) {
	text := common.PlainText(signal.Content)
	lower := " " + strings.ToLower(text) + " "

	painPoints := extractPainPoints(text)

	qc := &models.QualitativeContext{
		PainPoints:        painPoints,
		Urgency:           ruleUrgency(signal, lower),
		Specificity:       ruleSpecificity(signal, text, painPoints),
		BuyingStage:       ruleBuyingStage(signal, lower, painPoints),
		Sentiment:         ruleSentiment(lower),
		FalsePositiveRisk: ruleFalsePositiveRisk(signal),
		Confidence:        ruleConfidence(signal, text),
		KeyInsights:       ruleInsights(signal, painPoints),
		Source:            models.SourceRules,
	}
	return qc, nil
}

func extractPainPoints(text string) []string {
	points := []string{}
	for _, sentence := range splitSentences(text) {
		if containsAny(strings.ToLower(sentence), painKeywords) {
			points = append(points, sentence)
			if len(points) == maxPainPoints {
				break
			}
		}
	}
	return points
}

func ruleUrgency(s models.Signal, lower string) models.Level {
	if containsAny(lower, urgencyKeywords) {
		return models.LevelHigh
	}

	action := strings.ToLower(s.Action)
	switch {
	case s.VisitNumber >= 3:
		return models.LevelHigh
	case s.Type == models.SignalWebsiteVisit && scorer.IsHighValuePage(s.Page) && s.Duration >= 180:
		return models.LevelHigh
	case s.Type == models.SignalEmailInteraction && action == "replied":
		return models.LevelHigh
	case s.Type == models.SignalReviewSiteActivity && action == "compared":
		return models.LevelHigh
	}

	switch {
	case s.VisitNumber >= 2, s.Duration >= 60:
		return models.LevelMedium
	case s.Type == models.SignalJobChange && s.DaysInRole != nil && *s.DaysInRole <= 90:
		return models.LevelMedium
	case s.Type == models.SignalFundingRound:
		return models.LevelMedium
	case s.Type == models.SignalWebinarAttendance && action == "attended":
		return models.LevelMedium
	}
	return models.LevelLow
}

func ruleSpecificity(s models.Signal, text string, painPoints []string) models.Level {
	switch {
	case len(text) >= 150, len(painPoints) >= 2:
		return models.LevelHigh
	case len(text) >= 40, len(painPoints) == 1:
		return models.LevelMedium
	case s.Type == models.SignalWebsiteVisit && scorer.IsHighValuePage(s.Page):
		return models.LevelMedium
	case s.Type == models.SignalContentDownload && scorer.FunnelStage(s.Content) == "bofu":
		return models.LevelMedium
	}

	switch strings.ToLower(s.Action) {
	case "replied", "commented", "compared":
		return models.LevelMedium
	}
	return models.LevelLow
}

func ruleBuyingStage(s models.Signal, lower string, painPoints []string) models.BuyingStage {
	action := strings.ToLower(s.Action)

	switch s.Type {
	case models.SignalWebsiteVisit:
		switch scorer.PageTier(s.Page) {
		case "high":
			return models.StageDecision
		case "medium":
			return models.StageConsideration
		case "low":
			return models.StageAwareness
		}
	case models.SignalContentDownload:
		switch scorer.FunnelStage(s.Content) {
		case "bofu":
			return models.StageDecision
		case "mofu":
			return models.StageConsideration
		case "tofu":
			return models.StageAwareness
		}
	case models.SignalReviewSiteActivity:
		return models.StageConsideration
	case models.SignalWebinarAttendance:
		if action == "attended" {
			return models.StageConsideration
		}
		return models.StageAwareness
	case models.SignalHiringActivity:
		return models.StageAwareness
	}

	if containsAny(lower, decisionKeywords) {
		return models.StageDecision
	}
	if containsAny(lower, considerationKeywords) {
		return models.StageConsideration
	}

	switch s.Type {
	case models.SignalLinkedInEngagement:
		if action == "commented" && len(painPoints) > 0 {
			return models.StageConsideration
		}
		if action == "liked" || action == "reacted" || action == "followed" {
			return models.StageAwareness
		}
	case models.SignalEmailInteraction:
		if action == "replied" || action == "clicked" {
			return models.StageConsideration
		}
		return models.StageAwareness
	}
	return models.StageUnknown
}

func ruleSentiment(lower string) models.Sentiment {
	pos := countMatches(lower, positiveKeywords)
	neg := countMatches(lower, negativeKeywords)
	switch {
	case pos > neg:
		return models.SentimentPositive
	case neg > pos:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func ruleFalsePositiveRisk(s models.Signal) models.Level {
	if hasCompetitorMetadata(s) {
		return models.LevelHigh
	}
	if s.Type == models.SignalWebsiteVisit {
		if (s.Duration > 0 && s.Duration < 10) || s.BounceRate >= 0.8 {
			return models.LevelHigh
		}
		if (s.Duration > 0 && s.Duration < 30) || s.BounceRate >= 0.6 {
			return models.LevelMedium
		}
	}
	if isFreeMail(s.Email) {
		return models.LevelMedium
	}
	if s.Type == models.SignalLinkedInEngagement && strings.TrimSpace(s.Content) == "" {
		switch strings.ToLower(s.Action) {
		case "liked", "reacted", "viewed_profile":
			return models.LevelMedium
		}
	}
	if s.Type == models.SignalEmailInteraction && strings.ToLower(s.Action) == "opened" && s.Count <= 1 {
		return models.LevelMedium
	}
	return models.LevelLow
}

func ruleConfidence(s models.Signal, text string) float64 {
	evidence := 0
	if text != "" {
		evidence++
	}
	if s.Action != "" {
		evidence++
	}
	if s.Page != "" {
		evidence++
	}
	if s.Duration > 0 {
		evidence++
	}
	if s.Timestamp != nil {
		evidence++
	}
	confidence := 0.5 + 0.1*float64(evidence)
	if confidence > 0.8 {
		confidence = 0.8
	}
	return confidence
}

func ruleInsights(s models.Signal, painPoints []string) []string {
	var insights []string
	switch s.Type {
	case models.SignalWebsiteVisit:
		if s.Page != "" {
			insights = append(insights, fmt.Sprintf("Visited %s", s.Page))
		}
		if s.VisitNumber > 1 {
			insights = append(insights, fmt.Sprintf("Repeat visit (visit %d)", s.VisitNumber))
		}
	case models.SignalContentDownload:
		if stage := scorer.FunnelStage(s.Content); stage != "" {
			insights = append(insights, fmt.Sprintf("Downloaded %s content", strings.ToUpper(stage)))
		}
	case models.SignalJobChange:
		if s.DaysInRole != nil {
			insights = append(insights, fmt.Sprintf("%d days in current role", *s.DaysInRole))
		}
	}
	if len(painPoints) > 0 {
		insights = append(insights, fmt.Sprintf("%d pain point(s) expressed", len(painPoints)))
	}
	return insights
}

// hasCompetitorMetadata reports whether signal metadata flags the visitor
// as a competitor
func hasCompetitorMetadata(s models.Signal) bool {
	return HasCompetitorIndicator(s.Metadata)
}

// HasCompetitorIndicator inspects metadata for competitor markers: a truthy
// competitor key or any value equal to "competitor"
func HasCompetitorIndicator(metadata map[string]any) bool {
	for _, key := range competitorKeys {
		switch v := metadata[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") {
				return true
			}
		}
	}
	for _, v := range metadata {
		if str, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(str), "competitor") {
			return true
		}
	}
	return false
}

func isFreeMail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range freeMailDomains {
		if domain == d {
			return true
		}
	}
	return false
}
