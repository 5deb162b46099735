package rating

import (
	"strings"
	"unicode"

	"github.com/ternarybob/intentrank/internal/models"
)

const (
	baseFit             = 50.0
	decisionMakerFactor = 1.2
	managerFactor       = 1.05
)

var decisionMakerTokens = map[string]bool{
	"vp": true, "svp": true, "evp": true, "director": true, "chief": true,
	"cxo": true, "ceo": true, "cto": true, "cro": true,
}

// CalculateFitComponent scores the prospect's ideal-customer fit:
// 50 × company size × industry × role seniority, clamped to [0, 100]
func CalculateFitComponent(p models.Prospect, w Weights) float64 {
	fit := baseFit
	fit *= lookup(w.CompanySize, NormalizeCompanySize(p.CompanySize), 1.0)
	fit *= lookup(w.Industry, p.Industry, 1.0)

	switch {
	case IsDecisionMaker(p.Role):
		fit *= decisionMakerFactor
	case roleHasToken(p.Role, "manager"):
		fit *= managerFactor
	}
	return ClampFloat64(fit, 0, 100)
}

// IsDecisionMaker reports whether a role title carries budget authority
func IsDecisionMaker(role string) bool {
	lower := strings.ToLower(role)
	if strings.Contains(lower, "head of") || strings.Contains(lower, "vice president") {
		return true
	}
	for _, tok := range roleTokens(lower) {
		if decisionMakerTokens[tok] {
			return true
		}
	}
	return false
}

func roleHasToken(role, token string) bool {
	for _, tok := range roleTokens(strings.ToLower(role)) {
		if tok == token {
			return true
		}
	}
	return false
}

func roleTokens(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// NormalizeCompanySize maps spellings like "50 - 200" or "5,000+" onto table keys
func NormalizeCompanySize(size string) string {
	s := strings.ToLower(size)
	s = strings.NewReplacer(" ", "", ",", "", "employees", "", "–", "-").Replace(s)
	return s
}
