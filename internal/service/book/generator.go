package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"legacybook/internal/domain/models"
	domainllm "legacybook/internal/domain/services/llm"
)

// Generator turns the recorded answers into a biography-style chapter.
// Generation degrades gracefully: when the model call fails the caller gets
// a labeled placeholder that still lists the raw answers, never an error.
type Generator struct {
	completer domainllm.TextCompleter
	model     string
	logger    *slog.Logger
}

// NewGenerator creates a new chapter generator.
func NewGenerator(completer domainllm.TextCompleter, model string, logger *slog.Logger) *Generator {
	return &Generator{
		completer: completer,
		model:     model,
		logger:    logger,
	}
}

// Generate produces a chapter from the answers in their chronological order.
func (g *Generator) Generate(ctx context.Context, answers []models.Answer) string {
	if len(answers) == 0 {
		return ""
	}

	if g.completer == nil {
		return placeholderChapter(answers)
	}

	resp, err := g.completer.Complete(ctx, &domainllm.CompletionRequest{
		Model:     g.model,
		Prompt:    buildChapterPrompt(answers),
		MaxTokens: 3000,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		g.logger.Warn("chapter generation degraded to placeholder", "error", err)
		return placeholderChapter(answers)
	}

	return resp.Text
}

func buildChapterPrompt(answers []models.Answer) string {
	var notes strings.Builder
	for i, a := range answers {
		if i > 0 {
			notes.WriteString("\n\n")
		}
		if a.Question != "" {
			fmt.Fprintf(&notes, "Q: %s\n", a.Question)
		} else {
			fmt.Fprintf(&notes, "Q%d:\n", i+1)
		}
		fmt.Fprintf(&notes, "A: %s", a.Response)
		if a.FollowUp != nil {
			fmt.Fprintf(&notes, "\nFollow-up: %s", *a.FollowUp)
		}
	}

	var sb strings.Builder
	sb.WriteString("Write a 6-10 page biography-style chapter based on these interview notes.\n\n")
	sb.WriteString("Interview notes:\n")
	sb.WriteString(notes.String())
	sb.WriteString("\n\nTone guidelines:\n- Warm\n- Narrative\n- Reflective\n- Professional biography style\n\n")
	sb.WriteString("Rules:\n- Do NOT invent facts\n- Do NOT add information not present in the notes\n- Return plain text only\n")
	return sb.String()
}

// placeholderChapter is the fail-soft output: clearly labeled, and it keeps
// the recorded material visible so the flow never returns empty content.
func placeholderChapter(answers []models.Answer) string {
	var sb strings.Builder
	sb.WriteString("[Draft unavailable: the writing service could not be reached. ")
	sb.WriteString("Your recorded answers are listed below.]\n")
	for _, a := range answers {
		sb.WriteString("\n")
		if a.Question != "" {
			fmt.Fprintf(&sb, "%s\n", a.Question)
		}
		fmt.Fprintf(&sb, "%s\n", a.Response)
	}
	return sb.String()
}
