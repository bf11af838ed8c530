package config

import "legacybook/internal/domain/models"

const (
	// GenerateLimit caps initial draft generations per conversation.
	// Generation is the most expensive call, so a single shot; iteration
	// happens through regeneration.
	GenerateLimit = 1

	// VerifyLimit caps verification runs per conversation.
	VerifyLimit = 3

	// RegenerateLimit caps regenerations per conversation.
	RegenerateLimit = 3

	// MaxConversationTitleLength bounds conversation titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxConversationTitleLength = 255

	// MaxAnswerLength bounds a single answer submission. Answers feed model
	// prompts, so the bound also caps prompt cost.
	MaxAnswerLength = 10000
)

// UsageCap returns the per-conversation cap for a gated action.
// Unknown actions get a zero cap and are always rejected.
func UsageCap(action models.UsageAction) int {
	switch action {
	case models.ActionGenerate:
		return GenerateLimit
	case models.ActionVerify:
		return VerifyLimit
	case models.ActionRegenerate:
		return RegenerateLimit
	default:
		return 0
	}
}
