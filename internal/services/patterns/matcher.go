package patterns

import (
	"sort"
	"strings"

	"github.com/ternarybob/intentrank/internal/models"
)

const (
	baseMatchScore      = 50.0
	optionalMatchBonus  = 10.0
	fullEvidenceSignals = 4.0
)

// Match evaluates every pattern against the analyzed signals of one request.
// Matches are ordered by confidence × historical conversion, highest first;
// ties keep library order.
func Match(analyzed []models.AnalyzedSignal, library []models.Pattern) []models.MatchedPattern {
	matches := []models.MatchedPattern{}

	for _, p := range library {
		if m, ok := matchPattern(analyzed, p); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence*matches[i].HistoricalConversion >
			matches[j].Confidence*matches[j].HistoricalConversion
	})
	return matches
}

func matchPattern(analyzed []models.AnalyzedSignal, p models.Pattern) (models.MatchedPattern, bool) {
	if len(p.RequiredCriteria) == 0 {
		return models.MatchedPattern{}, false
	}

	supporting := map[int]struct{}{}

	for _, c := range p.RequiredCriteria {
		indexes, ok := Satisfies(analyzed, c)
		if !ok {
			return models.MatchedPattern{}, false
		}
		for _, i := range indexes {
			supporting[i] = struct{}{}
		}
	}

	satisfiedOptional := 0
	for _, c := range p.OptionalCriteria {
		indexes, ok := Satisfies(analyzed, c)
		if !ok {
			continue
		}
		satisfiedOptional++
		for _, i := range indexes {
			supporting[i] = struct{}{}
		}
	}

	matched := make([]int, 0, len(supporting))
	for i := range supporting {
		matched = append(matched, i)
	}
	sort.Ints(matched)

	evidence := float64(len(matched)) / fullEvidenceSignals
	if evidence > 1 {
		evidence = 1
	}

	return models.MatchedPattern{
		PatternID:            p.ID,
		Name:                 p.Name,
		MatchedSignals:       matched,
		MatchedSignalCount:   len(matched),
		SatisfiedOptional:    satisfiedOptional,
		MatchScore:           baseMatchScore + optionalMatchBonus*float64(satisfiedOptional),
		Confidence:           p.Confidence * evidence,
		HistoricalConversion: p.HistoricalConversion,
		AvgDaysToClose:       p.AvgDaysToClose,
		Weight:               p.Weight,
		IsFalsePositive:      p.IsFalsePositive,
	}, true
}

// Satisfies reports whether enough signals meet a criterion and returns
// their indexes. At least max(1, MinVisits) signals are needed.
func Satisfies(analyzed []models.AnalyzedSignal, c models.Criterion) ([]int, bool) {
	var indexes []int
	for _, a := range analyzed {
		if SignalMeets(a, c) {
			indexes = append(indexes, a.Index)
		}
	}

	needed := c.MinVisits
	if needed < 1 {
		needed = 1
	}
	return indexes, len(indexes) >= needed
}

// SignalMeets evaluates every constraint set on the criterion against one
// analyzed signal. Unset constraints are ignored.
func SignalMeets(a models.AnalyzedSignal, c models.Criterion) bool {
	s := a.RawData

	if s.Type != c.SignalType {
		return false
	}
	if c.Action != "" && !strings.EqualFold(strings.TrimSpace(s.Action), c.Action) {
		return false
	}
	if c.PageContains != "" && !strings.Contains(strings.ToLower(s.Page), strings.ToLower(c.PageContains)) {
		return false
	}
	if c.MinScore != nil && a.QuantitativeScore < *c.MinScore {
		return false
	}
	if c.MaxDuration != nil && s.Duration > *c.MaxDuration {
		return false
	}
	if c.MinBounceRate != nil && s.BounceRate < *c.MinBounceRate {
		return false
	}
	if c.RoleTenure != nil {
		if s.DaysInRole == nil {
			return false
		}
		if *s.DaysInRole < c.RoleTenure.MinDays || *s.DaysInRole > c.RoleTenure.MaxDays {
			return false
		}
	}
	if c.HasPainPoints != nil {
		if (len(a.QualitativeContext.PainPoints) > 0) != *c.HasPainPoints {
			return false
		}
	}
	if c.Metadata != nil {
		v, ok := s.MetadataString(c.Metadata.Key)
		if !ok || !strings.EqualFold(strings.TrimSpace(v), c.Metadata.Value) {
			return false
		}
	}
	if c.MissingField != "" && s.HasField(c.MissingField) {
		return false
	}
	return true
}
