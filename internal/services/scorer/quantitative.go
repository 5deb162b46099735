// Package scorer maps a raw signal to a 0-100 base score using
// signal-type-specific rule tables.
package scorer

import (
	"math"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/common"
	"github.com/ternarybob/intentrank/internal/models"
)

// NeutralScore is assigned to signals of an unrecognized type
const NeutralScore = 50.0

// Scorer wraps ScoreSignal and reports unknown signal types
type Scorer struct {
	logger arbor.ILogger
}

// New creates a Scorer
func New(logger arbor.ILogger) *Scorer {
	return &Scorer{logger: logger}
}

// Score returns the quantitative score of a signal. Unknown types score
// NeutralScore and are logged as a warning.
func (s *Scorer) Score(signal models.Signal) float64 {
	score, known := ScoreSignal(signal)
	if !known && s.logger != nil {
		s.logger.Warn().
			Str("signal_type", string(signal.Type)).
			Float64("score", score).
			Msg("Unknown signal type, assigning neutral score")
	}
	return score
}

// ScoreSignal dispatches to the rule for the signal's type. The second
// return value is false for unrecognized types.
func ScoreSignal(signal models.Signal) (float64, bool) {
	var score float64
	switch signal.Type {
	case models.SignalLinkedInEngagement:
		score = scoreLinkedIn(signal)
	case models.SignalWebsiteVisit:
		score = scoreWebsiteVisit(signal)
	case models.SignalContentDownload:
		score = scoreContentDownload(signal)
	case models.SignalEmailInteraction:
		score = scoreEmail(signal)
	case models.SignalJobChange:
		score = scoreJobChange(signal)
	case models.SignalWebinarAttendance:
		score = scoreWebinar(signal)
	case models.SignalFundingRound:
		score = scoreFunding(signal)
	case models.SignalHiringActivity:
		score = scoreHiring(signal)
	case models.SignalReviewSiteActivity:
		score = scoreReviewSite(signal)
	default:
		return NeutralScore, false
	}
	return Clamp(score, 0, 100), true
}

func scoreLinkedIn(s models.Signal) float64 {
	action := normalize(s.Action)
	score := linkedInActions.base(action, linkedInDefault)

	text := common.PlainText(s.Content)
	length := len(text)
	switch {
	case length > 100:
		score += 10
	case length > 30:
		score += 5
	case action == "commented" && length < 20:
		score -= 10
	}

	score += keywordBonus(text, relevanceKeywords, 15)
	return score
}

func scoreWebsiteVisit(s models.Signal) float64 {
	score := PageBase(s.Page)

	switch {
	case s.Duration >= 180:
		score += 15
	case s.Duration >= 60:
		score += 8
	case s.Duration > 0 && s.Duration < 10:
		score -= 15
	case s.Duration > 0 && s.Duration < 30:
		score -= 5
	}

	switch {
	case s.BounceRate >= 0.8:
		score -= 20
	case s.BounceRate >= 0.6:
		score -= 10
	}

	if s.VisitNumber > 1 {
		score += math.Min(float64(s.VisitNumber-1)*repeatVisitStep, repeatVisitCap)
	}
	return score
}

func scoreContentDownload(s models.Signal) float64 {
	asset := s.Content
	if asset == "" {
		asset = s.Page
	}
	score := AssetBase(asset)
	score += keywordBonus(asset, relevanceKeywords, 10)
	return score
}

func scoreEmail(s models.Signal) float64 {
	action := normalize(s.Action)
	score := emailActions.base(action, emailDefault)

	if action == "replied" && len(common.PlainText(s.Content)) > 100 {
		score += 10
	}
	if (action == "opened" || action == "clicked") && s.Count >= 3 {
		score += 5
	}
	return score
}

func scoreJobChange(s models.Signal) float64 {
	score := jobChangeBase

	if s.DaysInRole != nil {
		switch days := *s.DaysInRole; {
		case days <= 30:
			score += 20
		case days <= 90:
			score += 10
		case days > 180:
			score -= 10
		}
	}

	if containsAny(s.Role, seniorRoleKeywords) || containsAny(s.Content, seniorRoleKeywords) {
		score += 10
	}
	return score
}

func scoreWebinar(s models.Signal) float64 {
	score := webinarActions.base(normalize(s.Action), webinarDefault)
	if s.Duration >= 1800 {
		score += 10
	}
	if common.PlainText(s.Content) != "" {
		score += 10
	}
	return score
}

func scoreFunding(s models.Signal) float64 {
	score := fundingBase
	switch {
	case s.Amount >= 10_000_000:
		score += 15
	case s.Amount >= 1_000_000:
		score += 5
	}
	return score
}

func scoreHiring(s models.Signal) float64 {
	score := hiringBase
	if containsAny(s.Role, hiringRoleKeywords) || containsAny(s.Content, hiringRoleKeywords) {
		score += 15
	}
	if s.Count >= 5 {
		score += 10
	}
	return score
}

func scoreReviewSite(s models.Signal) float64 {
	score := reviewSiteActions.base(normalize(s.Action), reviewSiteDefault)
	if s.Duration >= 120 {
		score += 10
	}
	return score
}

// PageTier classifies a page as "high", "medium", "low" value or ""
func PageTier(page string) string {
	switch {
	case containsAny(page, highValuePages):
		return "high"
	case containsAny(page, mediumValuePages):
		return "medium"
	case containsAny(page, lowValuePages):
		return "low"
	default:
		return ""
	}
}

// PageBase returns the base score for a visited page by value tier
func PageBase(page string) float64 {
	switch PageTier(page) {
	case "high":
		return highValuePageBase
	case "medium":
		return mediumValuePageBase
	case "low":
		return lowValuePageBase
	default:
		return otherPageBase
	}
}

// IsHighValuePage reports whether a page belongs to the high-value tier
func IsHighValuePage(page string) bool {
	return PageTier(page) == "high"
}

// AssetBase returns the base score for a downloaded asset by funnel stage
func AssetBase(asset string) float64 {
	switch FunnelStage(asset) {
	case "bofu":
		return bofuBase
	case "mofu":
		return mofuBase
	case "tofu":
		return tofuBase
	default:
		return assetBase
	}
}

// FunnelStage classifies an asset title as bofu, mofu, tofu or "".
// Bottom of funnel keywords are checked first.
func FunnelStage(asset string) string {
	padded := " " + strings.ToLower(asset) + " "
	switch {
	case containsAny(padded, bofuKeywords):
		return "bofu"
	case containsAny(padded, mofuKeywords):
		return "mofu"
	case containsAny(padded, tofuKeywords):
		return "tofu"
	default:
		return ""
	}
}

func (a actionScores) base(action string, fallback float64) float64 {
	if score, ok := a[action]; ok {
		return score
	}
	return fallback
}

func keywordBonus(text string, keywords []string, ceiling float64) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	bonus := 0.0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			bonus += relevanceStep
		}
	}
	return math.Min(bonus, ceiling)
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
