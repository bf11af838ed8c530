package book

import (
	"context"
	"errors"
	"testing"

	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
)

func TestGateCaps(t *testing.T) {
	tests := []struct {
		action models.UsageAction
		cap    int
	}{
		{models.ActionGenerate, 1},
		{models.ActionVerify, 3},
		{models.ActionRegenerate, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			repo := newFakeConversationRepo(freshConversation())
			gate := NewUsageGate(repo)

			for i := 0; i < tt.cap; i++ {
				if _, err := gate.Check(context.Background(), "conv-1", "user-1", tt.action); err != nil {
					t.Fatalf("Check() #%d error = %v", i+1, err)
				}
				if err := gate.Consume(context.Background(), "conv-1", tt.action); err != nil {
					t.Fatalf("Consume() #%d error = %v", i+1, err)
				}
			}

			_, err := gate.Check(context.Background(), "conv-1", "user-1", tt.action)
			if !errors.Is(err, domain.ErrUsageLimit) {
				t.Fatalf("over-cap Check() error = %v, want ErrUsageLimit", err)
			}
		})
	}
}

func TestGateCheckWithoutConsume(t *testing.T) {
	// Check alone never burns quota; only Consume does.
	repo := newFakeConversationRepo(freshConversation())
	gate := NewUsageGate(repo)

	for i := 0; i < 5; i++ {
		if _, err := gate.Check(context.Background(), "conv-1", "user-1", models.ActionGenerate); err != nil {
			t.Fatalf("Check() #%d error = %v", i+1, err)
		}
	}
	if repo.conversations["conv-1"].GenerationCount != 0 {
		t.Error("Check() consumed quota")
	}
}

func TestGateUnknownConversation(t *testing.T) {
	gate := NewUsageGate(newFakeConversationRepo())

	_, err := gate.Check(context.Background(), "missing", "user-1", models.ActionGenerate)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
