package enrichment

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/ternarybob/intentrank/internal/common"
)

// promptContent converts HTML content to Markdown for inclusion in a prompt.
// Plain content is returned unchanged.
func promptContent(s string) string {
	if !common.LooksLikeHTML(s) {
		return s
	}
	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(s)
	if err != nil {
		return common.PlainText(s)
	}
	return strings.TrimSpace(converted)
}

// splitSentences breaks text on sentence terminators
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
