package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"legacybook/internal/catalog"
	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/services"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

type fakeConversationRepo struct {
	conversations map[string]*models.Conversation
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *models.Conversation) error {
	conversation.ID = "conv-1"
	stored := *conversation
	r.conversations[conversation.ID] = &stored
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConversationRepo) AdvanceQuestion(ctx context.Context, id string, fromIndex int) error {
	return nil
}

func (r *fakeConversationRepo) AdvanceSection(ctx context.Context, id, fromSection, toSection string) error {
	return nil
}

func (r *fakeConversationRepo) MarkCompleted(ctx context.Context, id, fromSection string) error {
	return nil
}

func (r *fakeConversationRepo) IncrementUsage(ctx context.Context, id string, action models.UsageAction) error {
	return nil
}

func newTestService(t *testing.T) (services.ConversationService, *fakeUserRepo, *fakeConversationRepo) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	users := &fakeUserRepo{users: make(map[string]*models.User)}
	conversations := &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
	return NewService(users, conversations, cat, slog.New(slog.DiscardHandler)), users, conversations
}

func TestStart(t *testing.T) {
	svc, users, _ := newTestService(t)

	got, err := svc.Start(context.Background(), &services.StartConversationRequest{
		UserID: "user-1",
		Email:  "erin@example.com",
		Name:   "Erin",
		Title:  "Grandma's Story",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got.Title != "Grandma's Story" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.CurrentSection != "childhood" {
		t.Errorf("CurrentSection = %q, want the first catalog section", got.CurrentSection)
	}
	if got.QuestionIndex != 0 {
		t.Errorf("QuestionIndex = %d, want 0", got.QuestionIndex)
	}
	if got.Status != models.ConversationActive {
		t.Errorf("Status = %q, want active", got.Status)
	}

	user, ok := users.users["user-1"]
	if !ok {
		t.Fatal("user was not upserted")
	}
	if user.Name != "Erin" || user.Email != "erin@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestStartDefaults(t *testing.T) {
	svc, users, _ := newTestService(t)

	got, err := svc.Start(context.Background(), &services.StartConversationRequest{
		UserID: "user-1",
		Title:  "   ",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got.Title != "My Legacy Book" {
		t.Errorf("Title = %q, want the default", got.Title)
	}
	if users.users["user-1"].Name != "User" {
		t.Errorf("user name = %q, want the default", users.users["user-1"].Name)
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *services.StartConversationRequest
	}{
		{
			name: "missing user id",
			req:  &services.StartConversationRequest{Title: "A Book"},
		},
		{
			name: "title over length cap",
			req:  &services.StartConversationRequest{UserID: "user-1", Title: strings.Repeat("a", 256)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			_, err := svc.Start(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	svc, _, conversations := newTestService(t)
	conversations.conversations["conv-1"] = &models.Conversation{
		ID:     "conv-1",
		UserID: "user-1",
	}

	if _, err := svc.Get(context.Background(), "conv-1", "user-1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	_, err := svc.Get(context.Background(), "conv-1", "someone-else")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign Get() error = %v, want ErrNotFound", err)
	}
}
