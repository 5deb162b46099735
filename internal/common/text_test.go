package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Need a CRM fix", "Need a CRM fix"},
		{"whitespace collapsed", "  two\n\nlines  ", "two lines"},
		{"markup stripped", "<p>Hello <strong>world</strong></p>", "Hello world"},
		{"script removed", "<div>Hi<script>alert(1)</script></div>", "Hi"},
		{"angle brackets without tags", "a < b > c", "a < b > c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}
