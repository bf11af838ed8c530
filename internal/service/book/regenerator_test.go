package book

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"legacybook/internal/domain/models"
)

func TestDecisionConstraints(t *testing.T) {
	tests := []struct {
		name      string
		decisions []models.VerificationDecision
		want      []string
	}{
		{
			name: "remove and anonymize",
			decisions: []models.VerificationDecision{
				{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionRemove},
				{IssueID: "0123456789ab", Decision: models.DecisionAnonymize},
			},
			want: []string{
				"Remove content related to issue a1b2c3d4e5f6",
				"Anonymize identifiers related to issue 0123456789ab",
			},
		},
		{
			name: "keep produces no constraint",
			decisions: []models.VerificationDecision{
				{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionKeep},
			},
			want: nil,
		},
		{
			name: "no decisions",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecisionConstraints(tt.decisions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecisionConstraints() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegenerateAppliesConstraints(t *testing.T) {
	completer := &stubCompleter{text: "A careful retelling without the flagged content."}
	r := NewRegenerator(completer, "gpt-4o-mini", slog.New(slog.DiscardHandler))

	decisions := []models.VerificationDecision{
		{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionRemove},
		{IssueID: "0123456789ab", Decision: models.DecisionKeep},
	}
	got := r.Regenerate(context.Background(), "The original chapter.", []string{"an answer"}, decisions)

	if got != "A careful retelling without the flagged content." {
		t.Errorf("Regenerate() = %q, want the model output", got)
	}

	prompt := completer.lastRequest.Prompt
	if !strings.Contains(prompt, "Remove content related to issue a1b2c3d4e5f6") {
		t.Error("prompt missing the REMOVE constraint")
	}
	if strings.Contains(prompt, "0123456789ab") {
		t.Error("KEEP decision leaked a constraint into the prompt")
	}
	if !strings.Contains(prompt, "The original chapter.") {
		t.Error("prompt missing the original chapter")
	}
}

func TestRegenerateKeepsOriginalOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		completer *stubCompleter
	}{
		{name: "no completer", completer: nil},
		{name: "model error", completer: &stubCompleter{err: errors.New("provider unavailable")}},
		{name: "blank output", completer: &stubCompleter{text: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.DiscardHandler)
			var r *Regenerator
			if tt.completer == nil {
				r = NewRegenerator(nil, "gpt-4o-mini", logger)
			} else {
				r = NewRegenerator(tt.completer, "gpt-4o-mini", logger)
			}

			got := r.Regenerate(context.Background(), "The original chapter.", nil, nil)
			if got != "The original chapter." {
				t.Errorf("Regenerate() = %q, want the original preserved", got)
			}
		})
	}
}
