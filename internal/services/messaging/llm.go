package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/services/llm"
)

const composerSystemInstruction = `You write short, specific B2B sales outreach messages. Never reveal how the
prospect was tracked. Reply with the message body only.`

// LLMComposer drafts messages with a remote model
type LLMComposer struct {
	generator llm.ContentGenerator
	model     string
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewLLMComposer creates an LLMComposer. An empty model uses the provider default.
func NewLLMComposer(generator llm.ContentGenerator, model string, timeout time.Duration, logger arbor.ILogger) *LLMComposer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMComposer{generator: generator, model: model, timeout: timeout, logger: logger}
}

// Compose implements Composer
func (c *LLMComposer) Compose(ctx context.Context, draft Draft) (string, error) {
	prompt, err := buildPrompt(draft)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(callCtx, &llm.ContentRequest{
		Prompt:            prompt,
		Model:             c.model,
		SystemInstruction: composerSystemInstruction,
		Temperature:       0.7,
		MaxTokens:         600,
	})
	if err != nil {
		return "", fmt.Errorf("message generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.logger.Debug().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("length", len(text)).
		Msg("Outreach message composed")
	return text, nil
}

func buildPrompt(draft Draft) (string, error) {
	brief := map[string]interface{}{
		"prospect":       draft.Prospect,
		"channel":        draft.Action.Channel,
		"messagingAngle": draft.Action.MessagingAngle,
		"doNotMention":   draft.Action.DoNotMention,
		"painPoints":     painPoints(draft),
		"priority":       draft.Quality.PriorityLevel,
	}
	data, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode message brief: %w", err)
	}

	var b strings.Builder
	b.WriteString("Write a first outreach message for this prospect.\n\n")
	b.WriteString("Brief:\n")
	b.Write(data)
	b.WriteString("\n\nKeep it under 120 words, reference their situation, and end with one clear question.")
	if draft.Action.Channel == "linkedin" {
		b.WriteString(" It will be sent as a LinkedIn message, so skip the subject line.")
	}
	return b.String(), nil
}

func painPoints(draft Draft) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range draft.Signals {
		for _, p := range s.QualitativeContext.PainPoints {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
