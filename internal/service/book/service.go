// Package book owns the biography draft lifecycle: generation, verification,
// regeneration under user decisions, and finalization, all bounded by the
// per-conversation usage gate.
package book

import (
	"context"
	"fmt"
	"log/slog"

	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
	"legacybook/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// bookService implements the BookService interface
type bookService struct {
	gate        *UsageGate
	generator   *Generator
	verifier    *Verifier
	regenerator *Regenerator
	answers     repositories.AnswerRepository
	versions    repositories.BookVersionRepository
	decisions   repositories.DecisionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewService creates a new book service
func NewService(
	gate *UsageGate,
	generator *Generator,
	verifier *Verifier,
	regenerator *Regenerator,
	answers repositories.AnswerRepository,
	versions repositories.BookVersionRepository,
	decisions repositories.DecisionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.BookService {
	return &bookService{
		gate:        gate,
		generator:   generator,
		verifier:    verifier,
		regenerator: regenerator,
		answers:     answers,
		versions:    versions,
		decisions:   decisions,
		txManager:   txManager,
		logger:      logger,
	}
}

// Generate produces an initial draft from all recorded answers. The draft is
// returned, not persisted; persistence starts with regeneration.
func (s *bookService) Generate(ctx context.Context, conversationID, userID string) (*services.GenerateResult, error) {
	conversation, err := s.gate.Check(ctx, conversationID, userID, models.ActionGenerate)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	chapter := s.generator.Generate(ctx, answers)

	if err := s.gate.Consume(ctx, conversation.ID, models.ActionGenerate); err != nil {
		return nil, err
	}

	s.logger.Info("chapter generated",
		"conversation_id", conversation.ID,
		"answers", len(answers),
	)

	return &services.GenerateResult{Chapter: chapter}, nil
}

// VerifyConversation generates a fresh draft and verifies it.
func (s *bookService) VerifyConversation(ctx context.Context, conversationID, userID string) (*models.VerificationReport, error) {
	conversation, err := s.gate.Check(ctx, conversationID, userID, models.ActionVerify)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	chapter := s.generator.Generate(ctx, answers)
	report := s.verifier.Verify(ctx, chapter, responses(answers))

	if err := s.gate.Consume(ctx, conversation.ID, models.ActionVerify); err != nil {
		return nil, err
	}

	return report, nil
}

// VerifyVersion verifies a stored version's content against the answers.
func (s *bookService) VerifyVersion(ctx context.Context, versionID, userID string) (*models.VerificationReport, error) {
	version, err := s.versions.GetByID(ctx, versionID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Check(ctx, version.ConversationID, userID, models.ActionVerify); err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByConversation(ctx, version.ConversationID, userID)
	if err != nil {
		return nil, err
	}

	report := s.verifier.Verify(ctx, version.Content, responses(answers))

	if err := s.gate.Consume(ctx, version.ConversationID, models.ActionVerify); err != nil {
		return nil, err
	}

	return report, nil
}

// Regenerate re-produces the draft honoring the recorded decisions and
// persists it as the next DRAFT version. A FINAL version is never touched;
// regeneration only appends.
func (s *bookService) Regenerate(ctx context.Context, conversationID, userID string) (*models.BookVersion, error) {
	conversation, err := s.gate.Check(ctx, conversationID, userID, models.ActionRegenerate)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	decisions, err := s.decisions.ListByConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	original := s.generator.Generate(ctx, answers)
	regenerated := s.regenerator.Regenerate(ctx, original, responses(answers), decisions)

	version := &models.BookVersion{
		ConversationID: conversationID,
		Content:        regenerated,
		Status:         models.VersionDraft,
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, err
	}

	if err := s.gate.Consume(ctx, conversation.ID, models.ActionRegenerate); err != nil {
		return nil, err
	}

	s.logger.Info("draft regenerated",
		"conversation_id", conversationID,
		"version", version.VersionNumber,
		"decisions", len(decisions),
	)

	return version, nil
}

// SaveDecisions records issue resolutions used by Regenerate. The owning
// conversation is loaded first so decisions can never attach to a foreign
// conversation.
func (s *bookService) SaveDecisions(ctx context.Context, conversationID, userID string, req *services.SaveDecisionsRequest) error {
	if err := s.validateDecisions(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	conversation, err := s.gate.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, d := range req.Decisions {
			decision := &models.VerificationDecision{
				ConversationID: conversation.ID,
				IssueID:        d.IssueID,
				Decision:       d.Decision,
			}
			if err := s.decisions.Upsert(txCtx, decision); err != nil {
				return err
			}
		}
		return nil
	})
}

// Finalize promotes a version to FINAL. The demotion of any prior FINAL and
// the promotion happen in one transaction, so the at-most-one-FINAL
// invariant holds even against concurrent finalizations.
func (s *bookService) Finalize(ctx context.Context, versionID, userID string) (*models.BookVersion, error) {
	version, err := s.versions.GetByID(ctx, versionID, userID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versions.DemoteFinal(txCtx, version.ConversationID); err != nil {
			return err
		}
		return s.versions.SetStatus(txCtx, version.ID, models.VersionFinal)
	})
	if err != nil {
		return nil, err
	}

	version.Status = models.VersionFinal

	s.logger.Info("version finalized",
		"conversation_id", version.ConversationID,
		"version", version.VersionNumber,
	)

	return version, nil
}

// loadAnswers fetches the conversation's answers, requiring at least one.
func (s *bookService) loadAnswers(ctx context.Context, conversationID, userID string) ([]models.Answer, error) {
	answers, err := s.answers.ListByConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers recorded for conversation", domain.ErrValidation)
	}
	return answers, nil
}

func (s *bookService) validateDecisions(req *services.SaveDecisionsRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Decisions, validation.Required),
	); err != nil {
		return err
	}
	for _, d := range req.Decisions {
		if err := validation.ValidateStruct(&d,
			validation.Field(&d.IssueID, validation.Required),
			validation.Field(&d.Decision, validation.Required,
				validation.In(models.DecisionKeep, models.DecisionRemove, models.DecisionAnonymize)),
		); err != nil {
			return err
		}
	}
	return nil
}

func responses(answers []models.Answer) []string {
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = a.Response
	}
	return out
}
