// Package patterns holds the library of historically validated signal
// combinations and the evaluator that matches a request's signals against it.
package patterns

import "github.com/ternarybob/intentrank/internal/models"

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

// DefaultPatterns returns a fresh copy of the built-in pattern library
func DefaultPatterns() []models.Pattern {
	return []models.Pattern{
		{
			ID:          "engaged_evaluator",
			Name:        "Engaged Evaluator",
			Description: "Commented on LinkedIn content and looked at pricing",
			RequiredCriteria: []models.Criterion{
				{SignalType: models.SignalLinkedInEngagement, Action: "commented"},
				{SignalType: models.SignalWebsiteVisit, PageContains: "pricing"},
			},
			OptionalCriteria: []models.Criterion{
				{SignalType: models.SignalContentDownload},
				{SignalType: models.SignalWebsiteVisit, PageContains: "pricing", MinVisits: 3},
			},
			HistoricalConversion: 72,
			AvgDaysToClose:       intPtr(35),
			Confidence:           0.85,
			Weight:               80,
		},
		{
			ID:          "new_role_evaluator",
			Name:        "New Role Evaluator",
			Description: "Recently started a role and is reviewing the tool stack",
			RequiredCriteria: []models.Criterion{
				{SignalType: models.SignalJobChange, RoleTenure: &models.TenureWindow{MinDays: 0, MaxDays: 90}},
			},
			OptionalCriteria: []models.Criterion{
				{SignalType: models.SignalWebsiteVisit},
				{SignalType: models.SignalLinkedInEngagement},
				{SignalType: models.SignalContentDownload},
			},
			HistoricalConversion: 68,
			AvgDaysToClose:       intPtr(45),
			Confidence:           0.80,
			Weight:               75,
		},
		{
			ID:          "active_evaluator_budget",
			Name:        "Active Evaluator with Budget",
			Description: "Engaged pricing research shortly after a funding round",
			RequiredCriteria: []models.Criterion{
				{SignalType: models.SignalWebsiteVisit, PageContains: "pricing", MinScore: floatPtr(60)},
				{SignalType: models.SignalFundingRound},
			},
			OptionalCriteria: []models.Criterion{
				{SignalType: models.SignalContentDownload, MinScore: floatPtr(55)},
				{SignalType: models.SignalHiringActivity},
			},
			HistoricalConversion: 78,
			AvgDaysToClose:       intPtr(30),
			Confidence:           0.80,
			Weight:               85,
		},
		{
			ID:          "competitor_researcher",
			Name:        "Competitor Researcher",
			Description: "Visitor identified as a competitor gathering intelligence",
			RequiredCriteria: []models.Criterion{
				{SignalType: models.SignalWebsiteVisit, Metadata: &models.MetadataMatch{Key: "visitor_category", Value: "competitor"}},
			},
			OptionalCriteria: []models.Criterion{
				{SignalType: models.SignalContentDownload, MissingField: "email"},
				{SignalType: models.SignalWebsiteVisit, MinBounceRate: floatPtr(0.7)},
			},
			HistoricalConversion: 3,
			Confidence:           0.90,
			Weight:               -100,
			IsFalsePositive:      true,
		},
		{
			ID:          "ready_to_buy",
			Name:        "Ready to Buy",
			Description: "Repeated pricing visits combined with bottom-of-funnel content",
			RequiredCriteria: []models.Criterion{
				{SignalType: models.SignalWebsiteVisit, PageContains: "pricing", MinVisits: 3},
				{SignalType: models.SignalContentDownload, MinScore: floatPtr(70)},
			},
			OptionalCriteria: []models.Criterion{
				{SignalType: models.SignalEmailInteraction, Action: "replied"},
				{SignalType: models.SignalWebsiteVisit, PageContains: "demo"},
				{SignalType: models.SignalLinkedInEngagement, Action: "commented"},
			},
			HistoricalConversion: 85,
			AvgDaysToClose:       intPtr(21),
			Confidence:           0.90,
			Weight:               100,
		},
	}
}
