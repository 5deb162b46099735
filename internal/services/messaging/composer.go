// Package messaging drafts the first outreach message for an actionable
// analysis.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/intentrank/internal/models"
)

// ErrEmptyMessage is returned when a composer produced no text
var ErrEmptyMessage = errors.New("composer returned an empty message")

// Draft carries everything a composer may draw on
type Draft struct {
	Prospect models.Prospect
	Quality  models.QualityScoreResult
	Action   models.RecommendedAction
	Signals  []models.AnalyzedSignal
}

// Composer writes an outreach message for a draft
type Composer interface {
	Compose(ctx context.Context, draft Draft) (string, error)
}

var angleOpeners = map[string]string{
	"new_role_stack_evaluation": "Congratulations on the new role. The first few months are usually when teams take a fresh look at their tooling.",
	"quick_roi":                 "Teams in your position usually want to see a return within the first quarter, so I'll keep this concrete.",
	"scaling_challenges":        "Growing outbound without growing headcount at the same rate is a problem we hear about a lot.",
	"productivity_gains":        "A lot of sales teams tell us manual research eats hours every week.",
	"integration_simplicity":    "Keeping the CRM and the rest of the stack in sync tends to be harder than it should be.",
	"general_value_prop":        "I work with sales teams on finding the accounts that are actually ready for a conversation.",
}

// TemplateComposer assembles a message from the messaging angle and the
// strongest pain point. It needs no network and is deterministic.
type TemplateComposer struct{}

// NewTemplateComposer creates a TemplateComposer
func NewTemplateComposer() *TemplateComposer {
	return &TemplateComposer{}
}

// Compose implements Composer
func (c *TemplateComposer) Compose(_ context.Context, draft Draft) (string, error) {
	opener, ok := angleOpeners[draft.Action.MessagingAngle]
	if !ok {
		opener = angleOpeners["general_value_prop"]
	}

	var b strings.Builder
	b.WriteString(greeting(draft.Prospect))
	b.WriteString("\n\n")
	b.WriteString(opener)

	if pain := TopPainPoint(draft.Signals); pain != "" {
		fmt.Fprintf(&b, " You mentioned: %q. That is exactly the kind of problem we help with.", pain)
	}

	b.WriteString("\n\n")
	if draft.Prospect.Company != "" {
		fmt.Fprintf(&b, "Would a short call next week be useful to see how this could work at %s?", draft.Prospect.Company)
	} else {
		b.WriteString("Would a short call next week be useful?")
	}
	return b.String(), nil
}

func greeting(p models.Prospect) string {
	if p.Role != "" {
		return fmt.Sprintf("Hi, as %s you are probably close to this already.", p.Role)
	}
	return "Hi,"
}

// TopPainPoint returns the pain point raised most often across signals,
// ties broken alphabetically
func TopPainPoint(signals []models.AnalyzedSignal) string {
	counts := map[string]int{}
	for _, s := range signals {
		for _, p := range s.QualitativeContext.PainPoints {
			if p = strings.TrimSpace(p); p != "" {
				counts[p]++
			}
		}
	}
	if len(counts) == 0 {
		return ""
	}

	pains := make([]string, 0, len(counts))
	for p := range counts {
		pains = append(pains, p)
	}
	sort.Slice(pains, func(i, j int) bool {
		if counts[pains[i]] != counts[pains[j]] {
			return counts[pains[i]] > counts[pains[j]]
		}
		return pains[i] < pains[j]
	})
	return pains[0]
}
