// Package action turns a quality assessment into a concrete next-action
// recommendation for the sales team.
package action

import (
	"fmt"
	"strings"

	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/enrichment"
)

// Action types
const (
	TypeImmediateOutreach    = "immediate_outreach"
	TypePersonalizedOutreach = "personalized_outreach"
	TypeSoftTouch            = "soft_touch"
	TypeMonitorOnly          = "monitor_only"
)

// Channels
const (
	ChannelLinkedIn = "linkedin"
	ChannelEmail    = "email"
)

// Timings
const (
	TimingWithin24h  = "within_24h"
	TimingWithin48h  = "within_48h"
	TimingWithinWeek = "within_week"
	TimingNoRush     = "no_rush"
)

// Messaging angles
const (
	AngleNewRoleStackEvaluation = "new_role_stack_evaluation"
	AngleQuickROI               = "quick_roi"
	AngleScalingChallenges      = "scaling_challenges"
	AngleProductivityGains      = "productivity_gains"
	AngleIntegrationSimplicity  = "integration_simplicity"
	AngleGeneralValueProp       = "general_value_prop"
)

const (
	shallowScoreThreshold = 40.0
	hotRecency            = 0.9
)

var patternAngles = map[string]string{
	"new_role_evaluator":      AngleNewRoleStackEvaluation,
	"ready_to_buy":            AngleQuickROI,
	"active_evaluator_budget": AngleQuickROI,
}

// painBuckets are checked in order; the first bucket with a keyword hit wins
var painBuckets = []struct {
	angle    string
	keywords []string
}{
	{AngleScalingChallenges, []string{"scal", "grow", "expand", "volume", "capacity", "headcount", "outbound"}},
	{AngleProductivityGains, []string{"manual", "hours", "time-consuming", "productiv", "efficien", "automat", "slow", "repetitive"}},
	{AngleIntegrationSimplicity, []string{"integrat", "crm", "salesforce", "hubspot", "api", "sync", "silo", "connect"}},
}

var typeTaboos = []struct {
	signalType models.SignalType
	note       string
}{
	{models.SignalWebsiteVisit, "Specific pages visited or number of visits"},
	{models.SignalJobChange, "Their recent job change as the reason for reaching out"},
	{models.SignalEmailInteraction, "Email open or click tracking"},
}

var genericTaboos = []string{
	"Generic product pitch without reference to their situation",
	"Your own quota or end-of-quarter pressure",
}

var actionTypes = map[models.Priority]string{
	models.PriorityUrgent: TypeImmediateOutreach,
	models.PriorityHigh:   TypePersonalizedOutreach,
	models.PriorityMedium: TypeSoftTouch,
}

// Recommend builds the recommended action for a scored signal cluster.
// Ignore and low priorities produce a monitor-only recommendation; the
// estimates and red flags are computed on both paths.
func Recommend(quality models.QualityScoreResult, analyzed []models.AnalyzedSignal, prospect models.Prospect) models.RecommendedAction {
	top := topPattern(quality.MatchedPatterns)

	rec := models.RecommendedAction{
		RedFlags:              RedFlags(quality.MatchedPatterns, analyzed),
		ConversionProbability: ConversionProbability(quality.QualityScore, quality.Confidence, top),
		EstimatedDaysToClose:  DaysToClose(quality.QualityScore, top),
		EstimatedDealValue:    DealValue(prospect),
	}

	if !quality.PriorityLevel.Actionable() {
		rec.Type = TypeMonitorOnly
		rec.NextSteps = monitorSteps()
		return rec
	}

	rec.Type = actionTypes[quality.PriorityLevel]
	rec.Channel = Channel(analyzed)
	rec.Timing = Timing(quality.QualityScore, analyzed)
	rec.MessagingAngle = MessagingAngle(top, analyzed)
	rec.DoNotMention = DoNotMention(analyzed)
	rec.NextSteps = NextSteps(rec.Channel, rec.Timing)
	return rec
}

// topPattern is the highest-ranked matched pattern that is evidence of
// intent, or nil
func topPattern(matches []models.MatchedPattern) *models.MatchedPattern {
	for i := range matches {
		if !matches[i].IsFalsePositive {
			return &matches[i]
		}
	}
	return nil
}

// Channel prefers LinkedIn when the prospect engaged there, then email
func Channel(analyzed []models.AnalyzedSignal) string {
	hasEmail := false
	for _, a := range analyzed {
		switch a.RawData.Type {
		case models.SignalLinkedInEngagement:
			return ChannelLinkedIn
		case models.SignalEmailInteraction:
			hasEmail = true
		}
	}
	if hasEmail {
		return ChannelEmail
	}
	return ChannelLinkedIn
}

// Timing picks the outreach window from the score and signal freshness
func Timing(score int, analyzed []models.AnalyzedSignal) string {
	hot, urgent := false, false
	for _, a := range analyzed {
		if a.TemporalFactors.Recency > hotRecency {
			hot = true
		}
		if a.QualitativeContext.Urgency == models.LevelHigh {
			urgent = true
		}
	}

	switch {
	case score >= 85 || (hot && urgent):
		return TimingWithin24h
	case score >= 70:
		return TimingWithin48h
	case score >= 50:
		return TimingWithinWeek
	default:
		return TimingNoRush
	}
}

// MessagingAngle uses the top pattern's angle when it has one, otherwise the
// first pain-point bucket with a keyword hit
func MessagingAngle(top *models.MatchedPattern, analyzed []models.AnalyzedSignal) string {
	if top != nil {
		if angle, ok := patternAngles[top.PatternID]; ok {
			return angle
		}
	}

	var pains []string
	for _, a := range analyzed {
		for _, p := range a.QualitativeContext.PainPoints {
			pains = append(pains, strings.ToLower(p))
		}
	}
	text := strings.Join(pains, " ")

	for _, bucket := range painBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				return bucket.angle
			}
		}
	}
	return AngleGeneralValueProp
}

// DoNotMention lists topics that would expose tracking or feel intrusive
func DoNotMention(analyzed []models.AnalyzedSignal) []string {
	present := map[models.SignalType]bool{}
	for _, a := range analyzed {
		present[a.RawData.Type] = true
	}

	var notes []string
	for _, taboo := range typeTaboos {
		if present[taboo.signalType] {
			notes = append(notes, taboo.note)
		}
	}
	return append(notes, genericTaboos...)
}

// NextSteps returns the ordered follow-up plan for a channel
func NextSteps(channel, timing string) []models.NextStep {
	if channel == ChannelEmail {
		return []models.NextStep{
			{Action: "Send a personalized email that addresses their most pressing pain point", Timing: timing},
			{Action: "Connect on LinkedIn with a short note referencing the email", Timing: "2 days after first touch"},
			{Action: "Follow up with a relevant customer story", Timing: "5 days after first touch"},
			{Action: "Offer a short discovery call", Timing: "after a reply"},
		}
	}
	return []models.NextStep{
		{Action: "Send a personalized LinkedIn message that builds on their recent activity", Timing: timing},
		{Action: "Share a relevant customer story addressing their pain point", Timing: "2-3 days after first touch"},
		{Action: "Follow up by email with a tailored ROI estimate", Timing: "1 week after first touch"},
		{Action: "Offer a short discovery call", Timing: "after positive engagement"},
	}
}

func monitorSteps() []models.NextStep {
	return []models.NextStep{
		{Action: "Add to a nurture sequence", Timing: "now"},
		{Action: "Monitor for new buying signals", Timing: "ongoing"},
		{Action: "Re-score when more signals arrive", Timing: "on new signals"},
	}
}

// RedFlags enumerates reasons to distrust the signal cluster
func RedFlags(matches []models.MatchedPattern, analyzed []models.AnalyzedSignal) []string {
	flags := []string{}

	for _, m := range matches {
		if m.IsFalsePositive {
			flags = append(flags, fmt.Sprintf("Matched false-positive pattern: %s", m.Name))
		}
	}

	if len(analyzed) == 0 {
		return flags
	}

	highRisk := 0
	allShallow := true
	competitor := false
	for _, a := range analyzed {
		if a.QualitativeContext.FalsePositiveRisk == models.LevelHigh {
			highRisk++
		}
		if a.QuantitativeScore >= shallowScoreThreshold {
			allShallow = false
		}
		if enrichment.HasCompetitorIndicator(a.RawData.Metadata) {
			competitor = true
		}
	}

	if highRisk*2 > len(analyzed) {
		flags = append(flags, "Most signals carry a high false-positive risk")
	}
	if allShallow {
		flags = append(flags, "All signals are shallow (every score below 40)")
	}
	if competitor {
		flags = append(flags, "Signal metadata identifies a competitor")
	}
	return flags
}
