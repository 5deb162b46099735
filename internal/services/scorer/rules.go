package scorer

// Keyword and page tables used by the per-type scoring rules. Matching is
// case-insensitive substring matching.

var (
	highValuePages   = []string{"pricing", "demo", "trial", "contact", "quote", "signup", "sign-up", "checkout"}
	mediumValuePages = []string{"product", "features", "integrations", "case-stud", "case_stud", "customers", "security", "compare", "docs"}
	lowValuePages    = []string{"blog", "about", "careers", "news", "press"}

	// Bottom, middle and top of funnel asset keywords
	bofuKeywords = []string{"pricing", "roi", "calculator", "buyer's guide", "buyers guide", "buyer guide", "comparison", " vs ", "case study", "implementation", "rfp", "checklist", "demo"}
	mofuKeywords = []string{"webinar", "whitepaper", "white paper", "guide", "ebook", "e-book", "report", "playbook", "template"}
	tofuKeywords = []string{"blog", "infographic", "trends", "introduction", "101", "overview", "newsletter"}

	relevanceKeywords = []string{"pricing", "budget", "evaluat", "vendor", "solution", "demo", "implement", "integrat", "roi", "tool", "platform", "migrat", "replace"}

	seniorRoleKeywords = []string{"vp", "vice president", "director", "head of", "chief", "cxo", "ceo", "cto", "cro", "cfo", "coo"}

	hiringRoleKeywords = []string{"sales", "revops", "revenue", "operations", "data", "engineer", "growth", "marketing", "customer success"}
)

// actionScores maps an action verb to a base score for action-driven types
type actionScores map[string]float64

var (
	linkedInActions = actionScores{
		"commented":      70,
		"shared":         60,
		"followed":       45,
		"liked":          40,
		"reacted":        40,
		"viewed_profile": 35,
	}

	emailActions = actionScores{
		"replied":      75,
		"forwarded":    60,
		"clicked":      55,
		"opened":       30,
		"unsubscribed": 5,
	}

	webinarActions = actionScores{
		"attended":          60,
		"watched_recording": 45,
		"registered":        40,
	}

	reviewSiteActions = actionScores{
		"compared":        65,
		"read_reviews":    55,
		"viewed_category": 45,
	}
)

const (
	linkedInDefault   = 30.0
	emailDefault      = 25.0
	webinarDefault    = 35.0
	reviewSiteDefault = 40.0

	highValuePageBase   = 60.0
	mediumValuePageBase = 45.0
	lowValuePageBase    = 25.0
	otherPageBase       = 35.0

	bofuBase  = 75.0
	mofuBase  = 55.0
	tofuBase  = 35.0
	assetBase = 45.0

	jobChangeBase   = 55.0
	fundingBase     = 60.0
	hiringBase      = 45.0
	repeatVisitStep = 5.0
	repeatVisitCap  = 15.0
	relevanceStep   = 5.0
)
