package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"legacybook/internal/domain/models"
	domainllm "legacybook/internal/domain/services/llm"
)

// Regenerator re-produces a chapter honoring the user's issue decisions.
// Regeneration is best-effort: on any model failure it returns the original
// document unchanged, so a prior draft is never destroyed.
type Regenerator struct {
	completer domainllm.TextCompleter
	model     string
	logger    *slog.Logger
}

// NewRegenerator creates a new chapter regenerator.
func NewRegenerator(completer domainllm.TextCompleter, model string, logger *slog.Logger) *Regenerator {
	return &Regenerator{
		completer: completer,
		model:     model,
		logger:    logger,
	}
}

// Regenerate applies the decisions to the original chapter.
func (r *Regenerator) Regenerate(ctx context.Context, original string, sourceAnswers []string, decisions []models.VerificationDecision) string {
	if r.completer == nil {
		return original
	}

	temp := 0.2
	resp, err := r.completer.Complete(ctx, &domainllm.CompletionRequest{
		Model:       r.model,
		Prompt:      buildRegenerationPrompt(original, sourceAnswers, decisions),
		Temperature: &temp,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		r.logger.Warn("regeneration kept original draft", "error", err)
		return original
	}

	return resp.Text
}

// DecisionConstraints translates decisions into natural-language constraints.
// KEEP decisions produce no constraint.
func DecisionConstraints(decisions []models.VerificationDecision) []string {
	var constraints []string
	for _, d := range decisions {
		switch d.Decision {
		case models.DecisionRemove:
			constraints = append(constraints, fmt.Sprintf("Remove content related to issue %s", d.IssueID))
		case models.DecisionAnonymize:
			constraints = append(constraints, fmt.Sprintf("Anonymize identifiers related to issue %s", d.IssueID))
		}
	}
	return constraints
}

func buildRegenerationPrompt(original string, sourceAnswers []string, decisions []models.VerificationDecision) string {
	var sb strings.Builder
	sb.WriteString("You are regenerating a biography.\n\n")
	sb.WriteString("STRICT RULES:\n")
	sb.WriteString("- Follow constraints exactly\n")
	sb.WriteString("- Do not invent facts\n")
	sb.WriteString("- Do not add content beyond interview answers\n\n")
	sb.WriteString("Constraints:\n")
	sb.WriteString(strings.Join(DecisionConstraints(decisions), "\n"))
	sb.WriteString("\n\nOriginal Biography:\n\"\"\"")
	sb.WriteString(original)
	sb.WriteString("\"\"\"\n\nInterview Answers:\n\"\"\"")
	sb.WriteString(strings.Join(sourceAnswers, "\n"))
	sb.WriteString("\"\"\"\n\nReturn ONLY the regenerated biography text.\n")
	return sb.String()
}
