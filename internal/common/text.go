package common

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LooksLikeHTML is a cheap check for markup in free-text content
func LooksLikeHTML(s string) bool {
	return strings.Contains(s, "<") && strings.Contains(s, ">") &&
		(strings.Contains(s, "</") || strings.Contains(s, "/>"))
}

// PlainText reduces content to whitespace-normalized text. Markup is
// stripped with goquery, dropping script and style bodies.
func PlainText(s string) string {
	if LooksLikeHTML(s) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
