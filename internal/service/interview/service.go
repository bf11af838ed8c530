// Package interview implements the interview progression state machine:
// which question is asked next, how answers advance the section cursor, and
// when the interview terminates.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"legacybook/internal/catalog"
	"legacybook/internal/config"
	"legacybook/internal/domain"
	"legacybook/internal/domain/models"
	"legacybook/internal/domain/repositories"
	"legacybook/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// interviewService implements the InterviewService interface
type interviewService struct {
	conversations repositories.ConversationRepository
	answers       repositories.AnswerRepository
	catalog       *catalog.Catalog
	analyzer      services.Analyzer
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewService creates a new interview service
func NewService(
	conversations repositories.ConversationRepository,
	answers repositories.AnswerRepository,
	cat *catalog.Catalog,
	analyzer services.Analyzer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.InterviewService {
	return &interviewService{
		conversations: conversations,
		answers:       answers,
		catalog:       cat,
		analyzer:      analyzer,
		txManager:     txManager,
		logger:        logger,
	}
}

// NextQuestion returns the question at the conversation's cursor, persisting
// a section advance if the cursor has overflowed the current section.
func (s *interviewService) NextQuestion(ctx context.Context, conversationID, userID string) (*services.NextQuestionResult, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	return s.resolveQuestion(ctx, conversation)
}

// resolveQuestion computes the current question for a loaded conversation.
// It distinguishes three cases: a real question, the idempotent completed
// state, and corrupted state (unknown section).
func (s *interviewService) resolveQuestion(ctx context.Context, conversation *models.Conversation) (*services.NextQuestionResult, error) {
	if conversation.Completed() {
		return &services.NextQuestionResult{Completed: true}, nil
	}

	// An unrecognized section is a hard error, never silent completion.
	questions, ok := s.catalog.Questions(conversation.CurrentSection)
	if !ok {
		return nil, &domain.StateCorruptedError{
			ConversationID: conversation.ID,
			Section:        conversation.CurrentSection,
		}
	}

	if conversation.QuestionIndex < len(questions) {
		return &services.NextQuestionResult{
			Question: questions[conversation.QuestionIndex],
			Section:  conversation.CurrentSection,
		}, nil
	}

	// Cursor overflowed the section: advance to the next section, or
	// complete the interview when none is left.
	nextSection, ok := s.catalog.NextSection(conversation.CurrentSection)
	if !ok {
		if err := s.conversations.MarkCompleted(ctx, conversation.ID, conversation.CurrentSection); err != nil {
			// A concurrent request already completed it; that is the
			// same outcome.
			if !isConflict(err) {
				return nil, err
			}
		}
		conversation.Status = models.ConversationCompleted
		conversation.QuestionIndex = models.QuestionIndexCompleted
		s.logger.Info("interview completed", "conversation_id", conversation.ID)
		return &services.NextQuestionResult{Completed: true}, nil
	}

	if err := s.conversations.AdvanceSection(ctx, conversation.ID, conversation.CurrentSection, nextSection); err != nil {
		if !isConflict(err) {
			return nil, err
		}
		// Lost the race; reload and resolve against the winner's state.
		fresh, err := s.conversations.GetByID(ctx, conversation.ID, conversation.UserID)
		if err != nil {
			return nil, err
		}
		return s.resolveQuestion(ctx, fresh)
	}
	conversation.CurrentSection = nextSection
	conversation.QuestionIndex = 0

	first, _ := s.catalog.Question(nextSection, 0)
	return &services.NextQuestionResult{
		Question: first,
		Section:  nextSection,
	}, nil
}

// SubmitAnswer validates, analyzes (best-effort) and persists one answer,
// then advances the question index conditionally on the index it answered.
func (s *interviewService) SubmitAnswer(ctx context.Context, conversationID, userID string, req *services.SubmitAnswerRequest) (*services.SubmitAnswerResult, error) {
	if err := s.validateSubmitRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	current, err := s.resolveQuestion(ctx, conversation)
	if err != nil {
		return nil, err
	}
	if current.Completed {
		return &services.SubmitAnswerResult{Completed: true}, nil
	}

	// Analysis is best-effort enrichment; the analyzer never errors, and a
	// degraded result must not block persistence.
	analysis := s.analyzer.Analyze(ctx, current.Question, req.Response)

	answer := &models.Answer{
		ConversationID: conversation.ID,
		Question:       current.Question,
		Response:       req.Response,
	}
	if analysis != nil {
		score := analysis.ImportanceScore
		answer.ImportanceScore = &score
		answer.Tags = analysis.Tags
		answer.FollowUp = analysis.FollowUpQuestion
	}

	// The answer insert and the cursor advance commit together: a racing
	// submission that loses the conditional advance must not leave its
	// answer row behind.
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.Create(txCtx, answer); err != nil {
			return err
		}
		return s.conversations.AdvanceQuestion(txCtx, conversation.ID, conversation.QuestionIndex)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("answer recorded",
		"conversation_id", conversation.ID,
		"section", conversation.CurrentSection,
		"index", conversation.QuestionIndex,
	)

	return &services.SubmitAnswerResult{
		Answer:           answer,
		FollowUpQuestion: answer.FollowUp,
	}, nil
}

func (s *interviewService) validateSubmitRequest(req *services.SubmitAnswerRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Response,
			validation.Required,
			validation.By(notBlank),
			validation.Length(1, config.MaxAnswerLength),
		),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
