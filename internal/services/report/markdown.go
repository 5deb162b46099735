// Package report renders an analysis result as a Markdown brief and as a PDF.
package report

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/intentrank/internal/models"
)

// frontmatter is the machine-readable header of a Markdown report
type frontmatter struct {
	AnalysisID   string    `yaml:"analysis_id"`
	Company      string    `yaml:"company"`
	QualityScore int       `yaml:"quality_score"`
	Priority     string    `yaml:"priority"`
	Confidence   string    `yaml:"confidence"`
	Action       string    `yaml:"action"`
	GeneratedAt  time.Time `yaml:"generated_at"`
}

// Markdown builds the report for one analysis. The document starts with a
// YAML frontmatter block that RenderPDF strips.
func Markdown(result *models.AnalysisResult, prospect models.Prospect) (string, error) {
	header, err := yaml.Marshal(frontmatter{
		AnalysisID:   result.AnalysisID,
		Company:      prospect.Company,
		QualityScore: result.QualityScore,
		Priority:     string(result.PriorityLevel),
		Confidence:   string(result.Confidence),
		Action:       result.Type,
		GeneratedAt:  result.GeneratedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode report frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# Intent Analysis: %s\n\n", orDash(prospect.Company))
	writeProspect(&b, prospect)
	writeSummary(&b, result)
	writeRecommendation(&b, result)
	writePatterns(&b, result.MatchedPatterns)
	writeSignals(&b, result)

	if result.Message != "" {
		b.WriteString("## Draft Message\n\n")
		b.WriteString(result.Message)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func writeProspect(b *strings.Builder, p models.Prospect) {
	b.WriteString("| Role | Industry | Company size | Location |\n")
	b.WriteString("|------|----------|--------------|----------|\n")
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n\n", cell(p.Role), cell(p.Industry), cell(p.CompanySize), cell(p.Location))
}

func writeSummary(b *strings.Builder, r *models.AnalysisResult) {
	b.WriteString("## Quality Score\n\n")
	fmt.Fprintf(b, "**%d / 100**, priority **%s**, confidence **%s**\n\n", r.QualityScore, r.PriorityLevel, r.Confidence)
	fmt.Fprintf(b, "%s\n\n", r.Reasoning)

	c := r.Components
	b.WriteString("| Component | Score | Weight |\n")
	b.WriteString("|-----------|-------|--------|\n")
	fmt.Fprintf(b, "| Signal | %.1f | %.2f |\n", c.Signal, c.Weights.Signal)
	fmt.Fprintf(b, "| Pattern | %.1f | %.2f |\n", c.Pattern, c.Weights.Pattern)
	fmt.Fprintf(b, "| Fit | %.1f | %.2f |\n\n", c.Fit, c.Weights.Fit)
}

func writeRecommendation(b *strings.Builder, r *models.AnalysisResult) {
	a := r.RecommendedAction
	b.WriteString("## Recommended Action\n\n")
	fmt.Fprintf(b, "- Type: `%s`\n", a.Type)
	if a.Channel != "" {
		fmt.Fprintf(b, "- Channel: `%s`\n", a.Channel)
		fmt.Fprintf(b, "- Timing: `%s`\n", a.Timing)
		fmt.Fprintf(b, "- Messaging angle: `%s`\n", a.MessagingAngle)
	}
	fmt.Fprintf(b, "- Conversion probability: %.0f%%\n", a.ConversionProbability*100)
	fmt.Fprintf(b, "- Estimated days to close: %d\n", a.EstimatedDaysToClose)
	fmt.Fprintf(b, "- Estimated deal value: %d-%d %s\n\n", a.EstimatedDealValue.Low, a.EstimatedDealValue.High, a.EstimatedDealValue.Currency)

	if len(a.NextSteps) > 0 {
		b.WriteString("### Next Steps\n\n")
		for i, step := range a.NextSteps {
			fmt.Fprintf(b, "%d. %s (%s)\n", i+1, step.Action, step.Timing)
		}
		b.WriteString("\n")
	}
	writeList(b, "Do Not Mention", a.DoNotMention)
	writeList(b, "Red Flags", a.RedFlags)
}

func writePatterns(b *strings.Builder, matches []models.MatchedPattern) {
	b.WriteString("## Matched Patterns\n\n")
	if len(matches) == 0 {
		b.WriteString("No pattern matched.\n\n")
		return
	}
	b.WriteString("| Pattern | Conversion | Confidence | Signals | False positive |\n")
	b.WriteString("|---------|------------|------------|---------|----------------|\n")
	for _, m := range matches {
		fmt.Fprintf(b, "| %s | %.0f%% | %.2f | %d | %s |\n",
			cell(m.Name), m.HistoricalConversion, m.Confidence, m.MatchedSignalCount, yesNo(m.IsFalsePositive))
	}
	b.WriteString("\n")
}

func writeSignals(b *strings.Builder, r *models.AnalysisResult) {
	b.WriteString("## Signals\n\n")
	b.WriteString("| # | Type | Score | Adjusted | Urgency | Stage | FP risk |\n")
	b.WriteString("|---|------|-------|----------|---------|-------|---------|\n")

	adjusted := make(map[int]float64, len(r.Breakdown))
	for _, c := range r.Breakdown {
		adjusted[c.Index] = c.AdjustedScore
	}
	for _, a := range r.AnalyzedSignals {
		qc := a.QualitativeContext
		fmt.Fprintf(b, "| %d | %s | %.0f | %.1f | %s | %s | %s |\n",
			a.Index+1, a.RawData.Type, a.QuantitativeScore, adjusted[a.Index], qc.Urgency, qc.BuyingStage, qc.FalsePositiveRisk)
	}
	b.WriteString("\n")

	var insights []string
	for _, a := range r.AnalyzedSignals {
		insights = append(insights, a.QualitativeContext.KeyInsights...)
	}
	writeList(b, "Key Insights", insights)

	if r.EnrichmentFailures > 0 {
		fmt.Fprintf(b, "*%d signal(s) could not be enriched and use heuristic context.*\n\n", r.EnrichmentFailures)
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// cell escapes table separators
func cell(s string) string {
	return strings.ReplaceAll(orDash(s), "|", "/")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
