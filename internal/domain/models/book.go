package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// BookVersion statuses
const (
	VersionDraft    = "DRAFT"
	VersionVerified = "VERIFIED"
	VersionFinal    = "FINAL"
)

// Verification report statuses
const (
	ReportPass = "PASS"
	ReportWarn = "WARN"
	ReportFail = "FAIL"
)

// Verification issue types
const (
	IssueSensitive = "SENSITIVE"
	IssueIntegrity = "INTEGRITY"
	IssueCoverage  = "COVERAGE"
)

// Verification issue severities
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Verification decisions
const (
	DecisionKeep      = "KEEP"
	DecisionRemove    = "REMOVE"
	DecisionAnonymize = "ANONYMIZE"
)

// BookVersion is one generated or regenerated biography draft. Version
// numbers are 1-based and monotone per conversation. At most one version
// per conversation may be FINAL at any time.
type BookVersion struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	VersionNumber  int       `json:"version_number"`
	Content        string    `json:"content"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// VerificationIssue is one flagged problem in a draft. The ID is derived
// from type+message, so identical issues collapse to the same ID across
// repeated verification runs.
type VerificationIssue struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// IssueID computes the deterministic identifier for an issue.
func IssueID(issueType, message string) string {
	sum := sha256.Sum256([]byte(issueType + ":" + message))
	return hex.EncodeToString(sum[:])[:12]
}

// VerificationReport is the structured outcome of verifying a draft.
type VerificationReport struct {
	Status string              `json:"status"`
	Issues []VerificationIssue `json:"issues"`
}

// VerificationDecision is a user's resolution of one issue, used as an
// input constraint to regeneration.
type VerificationDecision struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	IssueID        string    `json:"issue_id"`
	Decision       string    `json:"decision"`
	CreatedAt      time.Time `json:"created_at"`
}
