package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
	"legacybook/internal/domain/services"
	domainllm "legacybook/internal/domain/services/llm"
)

// stubCompleter returns canned text and records the last request it saw.
type stubCompleter struct {
	text string
	err  error

	calls       int
	lastRequest *domainllm.CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return &domainllm.CompletionResponse{Text: s.text, Model: req.Model}, nil
}

type fakeConversationRepo struct {
	conversations map[string]*models.Conversation
}

func newFakeConversationRepo(convs ...*models.Conversation) *fakeConversationRepo {
	repo := &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
	for _, c := range convs {
		repo.conversations[c.ID] = c
	}
	return repo
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *models.Conversation) error {
	r.conversations[conversation.ID] = conversation
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
	c, ok := r.conversations[id]
	if !ok {
		return domain.ErrNotFound
	}
	switch action {
	case models.ActionGenerate:
		c.GenerationCount++
	case models.ActionVerify:
		c.VerificationCount++
	case models.ActionRegenerate:
		c.RegenerationCount++
	}
	return nil
}

type fakeAnswerRepo struct {
	answers []models.Answer
	err     error
}

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	r.answers = append(r.answers, *answer)
	return nil
}

func (r *fakeAnswerRepo) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Answer, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.answers, nil
}

type fakeVersionRepo struct {
	versions  map[string]*models.BookVersion
	nextID    int
	createErr error
}

func newFakeVersionRepo(versions ...*models.BookVersion) *fakeVersionRepo {
	repo := &fakeVersionRepo{versions: make(map[string]*models.BookVersion)}
	for _, v := range versions {
		repo.versions[v.ID] = v
	}
	return repo
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *models.BookVersion) error {
	if r.createErr != nil {
		return r.createErr
	}
	max := 0
	for _, v := range r.versions {
		if v.ConversationID == version.ConversationID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	r.nextID++
	version.ID = fmt.Sprintf("version-%d", r.nextID)
	version.VersionNumber = max + 1
	stored := *version
	r.versions[version.ID] = &stored
	return nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, id, userID string) (*models.BookVersion, error) {
	v, ok := r.versions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVersionRepo) DemoteFinal(ctx context.Context, conversationID string) error {
	for _, v := range r.versions {
		if v.ConversationID == conversationID && v.Status == models.VersionFinal {
			v.Status = models.VersionVerified
		}
	}
	return nil
}

func (r *fakeVersionRepo) SetStatus(ctx context.Context, id, status string) error {
	v, ok := r.versions[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	return nil
}

type fakeDecisionRepo struct {
	decisions map[string]*models.VerificationDecision // keyed by issue ID
}

func newFakeDecisionRepo() *fakeDecisionRepo {
	return &fakeDecisionRepo{decisions: make(map[string]*models.VerificationDecision)}
}

func (r *fakeDecisionRepo) Upsert(ctx context.Context, decision *models.VerificationDecision) error {
	stored := *decision
	r.decisions[decision.IssueID] = &stored
	return nil
}

func (r *fakeDecisionRepo) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.VerificationDecision, error) {
	var out []models.VerificationDecision
	for _, d := range r.decisions {
		if d.ConversationID == conversationID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fixture struct {
	conversations *fakeConversationRepo
	answers       *fakeAnswerRepo
	versions      *fakeVersionRepo
	decisions     *fakeDecisionRepo
	completer     *stubCompleter
	service       services.BookService
}

func newFixture(t *testing.T, completer *stubCompleter, convs ...*models.Conversation) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	f := &fixture{
		conversations: newFakeConversationRepo(convs...),
		answers:       &fakeAnswerRepo{},
		versions:      newFakeVersionRepo(),
		decisions:     newFakeDecisionRepo(),
		completer:     completer,
	}

	var c domainllm.TextCompleter
	if completer != nil {
		c = completer
	}
	f.service = NewService(
		NewUsageGate(f.conversations),
		NewGenerator(c, "gpt-4o-mini", logger),
		NewVerifier(c, "gpt-4o-mini", logger),
		NewRegenerator(c, "gpt-4o-mini", logger),
		f.answers,
		f.versions,
		f.decisions,
		&fakeTxManager{},
		logger,
	)
	return f
}

func freshConversation() *models.Conversation {
	return &models.Conversation{
		ID:             "conv-1",
		UserID:         "user-1",
		Title:          "My Legacy Book",
		CurrentSection: "childhood",
		Status:         models.ConversationActive,
	}
}

func (f *fixture) seedAnswers(responses ...string) {
	for i, resp := range responses {
		f.answers.answers = append(f.answers.answers, models.Answer{
			ID:             fmt.Sprintf("answer-%d", i+1),
			ConversationID: "conv-1",
			Question:       fmt.Sprintf("Question %d?", i+1),
			Response:       resp,
		})
	}
}

func TestGenerate(t *testing.T) {
	completer := &stubCompleter{text: "Chapter One. It began in a farmhouse."}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950", "On a farm outside Waterloo")

	got, err := f.service.Generate(context.Background(), "conv-1", "user-1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.Chapter != "Chapter One. It began in a farmhouse." {
		t.Errorf("Chapter = %q, want the model output", got.Chapter)
	}
	if f.conversations.conversations["conv-1"].GenerationCount != 1 {
		t.Errorf("generation count = %d, want 1", f.conversations.conversations["conv-1"].GenerationCount)
	}
}

func TestGenerateRequiresAnswers(t *testing.T) {
	f := newFixture(t, &stubCompleter{text: "chapter"}, freshConversation())

	_, err := f.service.Generate(context.Background(), "conv-1", "user-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if f.conversations.conversations["conv-1"].GenerationCount != 0 {
		t.Error("quota consumed despite rejected generation")
	}
}

func TestGenerateCap(t *testing.T) {
	completer := &stubCompleter{text: "chapter"}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950")

	// generate is capped at one per conversation
	if _, err := f.service.Generate(context.Background(), "conv-1", "user-1"); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}

	_, err := f.service.Generate(context.Background(), "conv-1", "user-1")
	if !errors.Is(err, domain.ErrUsageLimit) {
		t.Fatalf("second Generate() error = %v, want ErrUsageLimit", err)
	}

	var limitErr *domain.UsageLimitError
	if !errors.As(err, &limitErr) {
		t.Fatal("error is not a UsageLimitError")
	}
	if limitErr.Action != "generate" || limitErr.Limit != 1 {
		t.Errorf("limit error = %+v, want action generate, limit 1", limitErr)
	}
	if completer.calls != 1 {
		t.Errorf("model called %d times, want 1 (rejected attempt must not reach it)", completer.calls)
	}
}

func TestVerifyConversationCap(t *testing.T) {
	completer := &stubCompleter{text: `{"status": "PASS", "issues": []}`}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950")

	for i := 0; i < 3; i++ {
		report, err := f.service.VerifyConversation(context.Background(), "conv-1", "user-1")
		if err != nil {
			t.Fatalf("VerifyConversation() #%d error = %v", i+1, err)
		}
		if report.Status != models.ReportPass {
			t.Errorf("report status = %q, want PASS", report.Status)
		}
	}

	_, err := f.service.VerifyConversation(context.Background(), "conv-1", "user-1")
	if !errors.Is(err, domain.ErrUsageLimit) {
		t.Fatalf("fourth VerifyConversation() error = %v, want ErrUsageLimit", err)
	}
}

func TestVerifyVersion(t *testing.T) {
	completer := &stubCompleter{text: `{"status": "WARN", "issues": [{"type": "SENSITIVE", "message": "mentions a medical condition", "severity": "MEDIUM"}]}`}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950")
	f.versions.versions["version-9"] = &models.BookVersion{
		ID:             "version-9",
		ConversationID: "conv-1",
		VersionNumber:  1,
		Content:        "A stored draft.",
		Status:         models.VersionDraft,
	}

	report, err := f.service.VerifyVersion(context.Background(), "version-9", "user-1")
	if err != nil {
		t.Fatalf("VerifyVersion() error = %v", err)
	}
	if report.Status != models.ReportWarn {
		t.Errorf("status = %q, want WARN", report.Status)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(report.Issues))
	}
	wantID := models.IssueID("SENSITIVE", "mentions a medical condition")
	if report.Issues[0].ID != wantID {
		t.Errorf("issue ID = %q, want %q", report.Issues[0].ID, wantID)
	}
	if f.conversations.conversations["conv-1"].VerificationCount != 1 {
		t.Error("verification was not counted")
	}
}

func TestVerifyVersionUnknown(t *testing.T) {
	f := newFixture(t, &stubCompleter{text: "{}"}, freshConversation())

	_, err := f.service.VerifyVersion(context.Background(), "missing", "user-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRegenerate(t *testing.T) {
	completer := &stubCompleter{text: "A careful retelling."}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950", "On a farm outside Waterloo")

	version, err := f.service.Regenerate(context.Background(), "conv-1", "user-1")
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if version.Status != models.VersionDraft {
		t.Errorf("status = %q, want DRAFT", version.Status)
	}
	if version.VersionNumber != 1 {
		t.Errorf("version number = %d, want 1", version.VersionNumber)
	}
	if version.Content != "A careful retelling." {
		t.Errorf("content = %q, want the regenerated text", version.Content)
	}
	if f.conversations.conversations["conv-1"].RegenerationCount != 1 {
		t.Error("regeneration was not counted")
	}

	// A second regeneration gets the next number.
	version, err = f.service.Regenerate(context.Background(), "conv-1", "user-1")
	if err != nil {
		t.Fatalf("second Regenerate() error = %v", err)
	}
	if version.VersionNumber != 2 {
		t.Errorf("version number = %d, want 2", version.VersionNumber)
	}
}

func TestRegenerateDoesNotConsumeOnPersistFailure(t *testing.T) {
	completer := &stubCompleter{text: "A careful retelling."}
	f := newFixture(t, completer, freshConversation())
	f.seedAnswers("I was born in 1950")
	f.versions.createErr = errors.New("insert failed")

	_, err := f.service.Regenerate(context.Background(), "conv-1", "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if f.conversations.conversations["conv-1"].RegenerationCount != 0 {
		t.Error("quota consumed despite failed persistence")
	}
}

func TestSaveDecisions(t *testing.T) {
	f := newFixture(t, nil, freshConversation())

	err := f.service.SaveDecisions(context.Background(), "conv-1", "user-1", &services.SaveDecisionsRequest{
		Decisions: []services.DecisionInput{
			{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionRemove},
			{IssueID: "0123456789ab", Decision: models.DecisionKeep},
		},
	})
	if err != nil {
		t.Fatalf("SaveDecisions() error = %v", err)
	}

	if len(f.decisions.decisions) != 2 {
		t.Fatalf("stored %d decisions, want 2", len(f.decisions.decisions))
	}
	if d := f.decisions.decisions["a1b2c3d4e5f6"]; d.Decision != models.DecisionRemove {
		t.Errorf("decision = %q, want REMOVE", d.Decision)
	}

	// Re-submitting the same issue replaces the earlier decision.
	err = f.service.SaveDecisions(context.Background(), "conv-1", "user-1", &services.SaveDecisionsRequest{
		Decisions: []services.DecisionInput{
			{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionAnonymize},
		},
	})
	if err != nil {
		t.Fatalf("second SaveDecisions() error = %v", err)
	}
	if d := f.decisions.decisions["a1b2c3d4e5f6"]; d.Decision != models.DecisionAnonymize {
		t.Errorf("decision = %q, want ANONYMIZE after upsert", d.Decision)
	}
}

func TestSaveDecisionsValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *services.SaveDecisionsRequest
	}{
		{
			name: "empty decisions",
			req:  &services.SaveDecisionsRequest{},
		},
		{
			name: "missing issue id",
			req: &services.SaveDecisionsRequest{
				Decisions: []services.DecisionInput{{Decision: models.DecisionKeep}},
			},
		},
		{
			name: "unknown decision value",
			req: &services.SaveDecisionsRequest{
				Decisions: []services.DecisionInput{{IssueID: "a1b2c3d4e5f6", Decision: "DELETE"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, freshConversation())
			err := f.service.SaveDecisions(context.Background(), "conv-1", "user-1", tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSaveDecisionsForeignConversation(t *testing.T) {
	f := newFixture(t, nil, freshConversation())

	err := f.service.SaveDecisions(context.Background(), "conv-1", "someone-else", &services.SaveDecisionsRequest{
		Decisions: []services.DecisionInput{{IssueID: "a1b2c3d4e5f6", Decision: models.DecisionKeep}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(f.decisions.decisions) != 0 {
		t.Error("decision stored for a foreign conversation")
	}
}

func TestFinalize(t *testing.T) {
	f := newFixture(t, nil, freshConversation())
	f.versions.versions["version-1"] = &models.BookVersion{
		ID: "version-1", ConversationID: "conv-1", VersionNumber: 1, Status: models.VersionFinal,
	}
	f.versions.versions["version-2"] = &models.BookVersion{
		ID: "version-2", ConversationID: "conv-1", VersionNumber: 2, Status: models.VersionDraft,
	}

	got, err := f.service.Finalize(context.Background(), "version-2", "user-1")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.Status != models.VersionFinal {
		t.Errorf("returned status = %q, want FINAL", got.Status)
	}

	finals := 0
	for _, v := range f.versions.versions {
		if v.Status == models.VersionFinal {
			finals++
		}
	}
	if finals != 1 {
		t.Errorf("%d FINAL versions, want exactly 1", finals)
	}
	if f.versions.versions["version-1"].Status != models.VersionVerified {
		t.Errorf("prior FINAL = %q, want demoted to VERIFIED", f.versions.versions["version-1"].Status)
	}
	if f.versions.versions["version-2"].Status != models.VersionFinal {
		t.Errorf("promoted version = %q, want FINAL", f.versions.versions["version-2"].Status)
	}
}

func TestFinalizeIsIdempotentPerVersion(t *testing.T) {
	f := newFixture(t, nil, freshConversation())
	f.versions.versions["version-1"] = &models.BookVersion{
		ID: "version-1", ConversationID: "conv-1", VersionNumber: 1, Status: models.VersionFinal,
	}

	got, err := f.service.Finalize(context.Background(), "version-1", "user-1")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.Status != models.VersionFinal {
		t.Errorf("status = %q, want FINAL", got.Status)
	}

	finals := 0
	for _, v := range f.versions.versions {
		if v.Status == models.VersionFinal {
			finals++
		}
	}
	if finals != 1 {
		t.Errorf("%d FINAL versions, want exactly 1", finals)
	}
}
