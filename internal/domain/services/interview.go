package services

import (
	"context"

	"legacybook/internal/domain/models"
)

// AnswerAnalysis is the enrichment attached to an answer by the analyzer.
// All fields are best-effort: analysis failure yields a nil *AnswerAnalysis
// at the call site, never a request failure.
type AnswerAnalysis struct {
	ImportanceScore  int      `json:"importanceScore"`
	Tags             []string `json:"tags"`
	FollowUpQuestion *string  `json:"followUpQuestion"`
}

// Analyzer classifies a free-text answer.
type Analyzer interface {
	Analyze(ctx context.Context, question, answer string) *AnswerAnalysis
}

// NextQuestionResult reports either the next question to ask or that the
// interview is complete. Completion is idempotent: once a conversation is
// completed, repeated calls keep returning Completed=true.
type NextQuestionResult struct {
	Question  string `json:"question,omitempty"`
	Section   string `json:"section,omitempty"`
	Completed bool   `json:"completed"`
}

// SubmitAnswerRequest carries one answer submission.
type SubmitAnswerRequest struct {
	Response string `json:"response"`
}

// SubmitAnswerResult is returned after an answer was persisted.
type SubmitAnswerResult struct {
	Answer           *models.Answer `json:"answer,omitempty"`
	FollowUpQuestion *string        `json:"followUpQuestion,omitempty"`
	Completed        bool           `json:"completed"`
}

// InterviewService drives the interview progression state machine.
type InterviewService interface {
	// NextQuestion returns the current question for the conversation,
	// advancing the section first when the index has overflowed.
	NextQuestion(ctx context.Context, conversationID, userID string) (*NextQuestionResult, error)

	// SubmitAnswer validates, analyzes (best-effort) and persists one answer,
	// then advances the question index.
	SubmitAnswer(ctx context.Context, conversationID, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResult, error)
}
