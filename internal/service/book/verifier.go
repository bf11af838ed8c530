package book

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"legacybook/internal/domain/models"
	domainllm "legacybook/internal/domain/services/llm"
)

// Verifier checks a generated chapter against the source answers for
// sensitive content, factual drift and coverage gaps. Verification has no
// safe synthetic fallback, so model failure surfaces as a WARN/FAIL report
// rather than being papered over.
type Verifier struct {
	completer domainllm.TextCompleter
	model     string
	logger    *slog.Logger
}

// NewVerifier creates a new chapter verifier.
func NewVerifier(completer domainllm.TextCompleter, model string, logger *slog.Logger) *Verifier {
	return &Verifier{
		completer: completer,
		model:     model,
		logger:    logger,
	}
}

// rawReport mirrors the JSON the model is instructed to return. Status is a
// pointer so an absent field is distinguishable from an empty one: absence
// of explicit confirmation must never read as PASS.
type rawReport struct {
	Status *string `json:"status"`
	Issues []struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"issues"`
}

// Verify analyzes the chapter and returns a structured report.
func (v *Verifier) Verify(ctx context.Context, chapter string, sourceAnswers []string) *models.VerificationReport {
	var content string
	if v.completer != nil {
		resp, err := v.completer.Complete(ctx, &domainllm.CompletionRequest{
			Model:  v.model,
			Prompt: buildVerificationPrompt(chapter, sourceAnswers),
		})
		if err != nil {
			v.logger.Warn("verifier model call failed", "error", err)
		} else {
			content = resp.Text
		}
	}

	if strings.TrimSpace(content) == "" {
		return &models.VerificationReport{
			Status: models.ReportWarn,
			Issues: []models.VerificationIssue{
				singleIssue(models.IssueIntegrity, "verifier returned no content", models.SeverityLow),
			},
		}
	}

	var parsed rawReport
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return &models.VerificationReport{
			Status: models.ReportFail,
			Issues: []models.VerificationIssue{
				singleIssue(models.IssueIntegrity, "verifier returned invalid JSON", models.SeverityHigh),
			},
		}
	}

	issues := make([]models.VerificationIssue, 0, len(parsed.Issues))
	for _, issue := range parsed.Issues {
		issues = append(issues, models.VerificationIssue{
			ID:       models.IssueID(issue.Type, issue.Message),
			Type:     issue.Type,
			Message:  issue.Message,
			Severity: issue.Severity,
		})
	}

	status := models.ReportWarn
	if parsed.Status != nil {
		switch *parsed.Status {
		case models.ReportPass, models.ReportWarn, models.ReportFail:
			status = *parsed.Status
		}
	}

	return &models.VerificationReport{
		Status: status,
		Issues: issues,
	}
}

func singleIssue(issueType, message, severity string) models.VerificationIssue {
	return models.VerificationIssue{
		ID:       models.IssueID(issueType, message),
		Type:     issueType,
		Message:  message,
		Severity: severity,
	}
}

func buildVerificationPrompt(chapter string, sourceAnswers []string) string {
	var sb strings.Builder
	sb.WriteString("You are an AI verifier.\n\n")
	sb.WriteString("STRICT RULES:\n")
	sb.WriteString("- You MUST NOT rewrite, edit, or improve any text.\n")
	sb.WriteString("- You MUST NOT suggest alternative wording.\n")
	sb.WriteString("- You MUST ONLY analyze and flag issues.\n\n")
	sb.WriteString("Analyze the following biography and interview answers.\n\n")
	sb.WriteString("Check for:\n")
	sb.WriteString("1. Sensitive personal content\n")
	sb.WriteString("2. Contradictions or hallucinated facts\n")
	sb.WriteString("3. Missing major life areas\n\n")
	sb.WriteString("Return ONLY valid JSON in this format:\n")
	sb.WriteString(`{
  "status": "PASS | WARN | FAIL",
  "issues": [
    {
      "type": "SENSITIVE | INTEGRITY | COVERAGE",
      "message": "string",
      "severity": "LOW | MEDIUM | HIGH"
    }
  ]
}`)
	sb.WriteString("\n\nBiography:\n\"\"\"")
	sb.WriteString(chapter)
	sb.WriteString("\"\"\"\n\nInterview Answers:\n\"\"\"")
	sb.WriteString(strings.Join(sourceAnswers, "\n"))
	sb.WriteString("\"\"\"\n")
	return sb.String()
}
