package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
)

func intPtr(v int) *int { return &v }

func TestScoreSignal_LinkedIn(t *testing.T) {
	tests := []struct {
		name   string
		signal models.Signal
		want   float64
	}{
		{
			name:   "like without content",
			signal: models.Signal{Type: models.SignalLinkedInEngagement, Action: "liked"},
			want:   40,
		},
		{
			name:   "short comment is penalised",
			signal: models.Signal{Type: models.SignalLinkedInEngagement, Action: "commented", Content: "Nice!"},
			want:   60,
		},
		{
			name: "markup does not count toward comment length",
			signal: models.Signal{
				Type:    models.SignalLinkedInEngagement,
				Action:  "commented",
				Content: `<div class="comment-body" data-urn="urn:li:comment:123456789"><p><span class="highlight"><strong>Nice post!</strong></span></p></div>`,
			},
			want: 60,
		},
		{
			name: "long comment with relevance keywords",
			signal: models.Signal{
				Type:    models.SignalLinkedInEngagement,
				Action:  "Commented",
				Content: "We are evaluating a new platform to replace our current tool because the pricing and integration story keeps getting worse every quarter.",
			},
			want: 95,
		},
		{
			name:   "unknown action uses default",
			signal: models.Signal{Type: models.SignalLinkedInEngagement, Action: "mentioned"},
			want:   30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ScoreSignal(tt.signal)
			assert.True(t, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreSignal_CommentBeatsLike(t *testing.T) {
	content := "Interesting take on outbound automation for growing teams."
	comment, _ := ScoreSignal(models.Signal{Type: models.SignalLinkedInEngagement, Action: "commented", Content: content})
	like, _ := ScoreSignal(models.Signal{Type: models.SignalLinkedInEngagement, Action: "liked", Content: content})
	assert.Greater(t, comment, like)
}

func TestScoreSignal_PricingBeatsBlog(t *testing.T) {
	pricing, _ := ScoreSignal(models.Signal{Type: models.SignalWebsiteVisit, Page: "/pricing", Duration: 90})
	blog, _ := ScoreSignal(models.Signal{Type: models.SignalWebsiteVisit, Page: "/blog/outbound-tips", Duration: 90})
	assert.Greater(t, pricing, blog)
}

func TestScoreSignal_RepeatVisitBeatsFirstVisit(t *testing.T) {
	first, _ := ScoreSignal(models.Signal{Type: models.SignalWebsiteVisit, Page: "/features", Duration: 60, VisitNumber: 1})
	third, _ := ScoreSignal(models.Signal{Type: models.SignalWebsiteVisit, Page: "/features", Duration: 60, VisitNumber: 3})
	assert.Greater(t, third, first)
}

func TestScoreSignal_WebsiteVisit(t *testing.T) {
	tests := []struct {
		name   string
		signal models.Signal
		want   float64
	}{
		{"long pricing visit", models.Signal{Type: models.SignalWebsiteVisit, Page: "/pricing", Duration: 240}, 75},
		{"repeat bonus is capped", models.Signal{Type: models.SignalWebsiteVisit, Page: "/pricing", Duration: 240, VisitNumber: 10}, 90},
		{"bounced blog visit clamps at zero", models.Signal{Type: models.SignalWebsiteVisit, Page: "/blog/post", Duration: 8, BounceRate: 0.9}, 0},
		{"moderate bounce", models.Signal{Type: models.SignalWebsiteVisit, Page: "/product", Duration: 20, BounceRate: 0.65}, 30},
		{"unknown page", models.Signal{Type: models.SignalWebsiteVisit, Page: "/", Duration: 0}, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ScoreSignal(tt.signal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreSignal_ContentDownload(t *testing.T) {
	tests := []struct {
		name  string
		asset string
		want  float64
	}{
		{"bottom of funnel with relevance", "SaaS Sales Tools Buyer's Guide & ROI Calculator", 85},
		{"middle of funnel", "State of Sales Development Report", 55},
		{"top of funnel", "Outbound Trends Infographic", 35},
		{"unclassified asset", "Untitled", 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ScoreSignal(models.Signal{Type: models.SignalContentDownload, Content: tt.asset})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreSignal_OtherTypes(t *testing.T) {
	tests := []struct {
		name   string
		signal models.Signal
		want   float64
	}{
		{"email reply", models.Signal{Type: models.SignalEmailInteraction, Action: "replied"}, 75},
		{"repeated opens", models.Signal{Type: models.SignalEmailInteraction, Action: "opened", Count: 4}, 35},
		{"unsubscribe", models.Signal{Type: models.SignalEmailInteraction, Action: "unsubscribed"}, 5},
		{"fresh senior job change", models.Signal{Type: models.SignalJobChange, DaysInRole: intPtr(20), Role: "VP of Sales"}, 85},
		{"stale job change", models.Signal{Type: models.SignalJobChange, DaysInRole: intPtr(400), Role: "Account Executive"}, 45},
		{"webinar with question", models.Signal{Type: models.SignalWebinarAttendance, Action: "attended", Duration: 2400, Content: "How does routing work?"}, 80},
		{"large funding round", models.Signal{Type: models.SignalFundingRound, Amount: 25_000_000}, 75},
		{"relevant hiring burst", models.Signal{Type: models.SignalHiringActivity, Role: "Sales Development Representative", Count: 6}, 70},
		{"review comparison", models.Signal{Type: models.SignalReviewSiteActivity, Action: "compared", Duration: 300}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ScoreSignal(tt.signal)
			assert.True(t, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreSignal_UnknownType(t *testing.T) {
	got, known := ScoreSignal(models.Signal{Type: "podcast_mention"})
	assert.False(t, known)
	assert.Equal(t, NeutralScore, got)

	s := New(arbor.NewLogger())
	assert.Equal(t, NeutralScore, s.Score(models.Signal{Type: "podcast_mention"}))
}

func TestScoreSignal_AlwaysInRange(t *testing.T) {
	signals := []models.Signal{
		{Type: models.SignalWebsiteVisit, Page: "/pricing/demo/trial", Duration: 10_000, VisitNumber: 50},
		{Type: models.SignalWebsiteVisit, Page: "/careers", Duration: 1, BounceRate: 1},
		{Type: models.SignalLinkedInEngagement, Action: "commented", Content: "pricing budget evaluate vendor solution demo implement integrate roi tool platform migrate replace, and a lot more text to push the length over one hundred characters"},
		{Type: models.SignalEmailInteraction, Action: "unsubscribed"},
		{Type: models.SignalJobChange, DaysInRole: intPtr(1000)},
	}

	for _, s := range signals {
		got, _ := ScoreSignal(s)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestFunnelStage(t *testing.T) {
	assert.Equal(t, "bofu", FunnelStage("Acme vs Globex comparison"))
	assert.Equal(t, "mofu", FunnelStage("The RevOps Playbook"))
	assert.Equal(t, "tofu", FunnelStage("Prospecting 101"))
	assert.Equal(t, "", FunnelStage(""))
}
