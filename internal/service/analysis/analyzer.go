// Package analysis classifies free-text interview answers into an importance
// score, topical tags and an optional follow-up question. It has a
// model-backed primary path and a deterministic keyword fallback; neither
// path ever fails the enclosing request.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"legacybook/internal/domain/services"
	domainllm "legacybook/internal/domain/services/llm"
)

const (
	// analysisTimeout is the hard cap on the primary model call. A slow
	// analysis must not hold up answer persistence.
	analysisTimeout = 8 * time.Second

	// minAnswerLength gates the primary path: very short answers are not
	// worth a model round trip.
	minAnswerLength = 12

	// longAnswerThreshold bumps the fallback importance score.
	longAnswerThreshold = 200

	// detailedAnswerThreshold triggers the fallback's generic follow-up.
	detailedAnswerThreshold = 300

	maxTags  = 3
	minScore = 1
	maxScore = 5
)

var fenceRe = regexp.MustCompile("^```(?:json)?\\s*")

// Analyzer implements services.Analyzer with a model-backed primary path and
// a deterministic fallback. A nil completer disables the primary path.
type Analyzer struct {
	completer domainllm.TextCompleter
	model     string
	logger    *slog.Logger
}

// NewAnalyzer creates a new answer analyzer.
func NewAnalyzer(completer domainllm.TextCompleter, model string, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		completer: completer,
		model:     model,
		logger:    logger,
	}
}

// Analyze classifies an answer. It never returns nil and never errors:
// any failure on the primary path falls through to the fallback.
func (a *Analyzer) Analyze(ctx context.Context, question, answer string) *services.AnswerAnalysis {
	trimmed := strings.TrimSpace(answer)

	if a.completer == nil || len(trimmed) < minAnswerLength {
		return Fallback(question, answer)
	}

	result, err := a.analyzeWithModel(ctx, question, answer)
	if err != nil {
		a.logger.Warn("answer analysis degraded to fallback", "error", err)
		return Fallback(question, answer)
	}
	return result
}

func (a *Analyzer) analyzeWithModel(ctx context.Context, question, answer string) (*services.AnswerAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	temp := 0.35
	resp, err := a.completer.Complete(ctx, &domainllm.CompletionRequest{
		Model:       a.model,
		Prompt:      buildAnalysisPrompt(question, answer),
		MaxTokens:   200,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseAnalysisJSON(resp.Text)
	if err != nil {
		return nil, err
	}

	return sanitize(parsed), nil
}

func buildAnalysisPrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString("You are an empathetic life interviewer.\n\n")
	sb.WriteString("Given:\nQuestion: \"" + question + "\"\nAnswer: \"" + answer + "\"\n\n")
	sb.WriteString("Return JSON only with:\n")
	sb.WriteString("- importanceScore (1-5)\n")
	sb.WriteString("- tags (array of 1-3 short keywords)\n")
	sb.WriteString("- followUpQuestion (null or a thoughtful single question)\n\n")
	sb.WriteString("Rules:\n- Be respectful\n- Do not repeat the same question\n- Follow-up must deepen the story\n")
	return sb.String()
}

// rawAnalysis mirrors the JSON shape the model is instructed to return.
// follow_up_question covers models that snake-case the field anyway.
type rawAnalysis struct {
	ImportanceScore  json.Number `json:"importanceScore"`
	Tags             []string    `json:"tags"`
	FollowUpQuestion *string     `json:"followUpQuestion"`
	FollowUpSnake    *string     `json:"follow_up_question"`
}

// parseAnalysisJSON defensively unwraps code fences and, if the payload still
// fails to parse, retries on the first balanced {...} substring.
func parseAnalysisJSON(text string) (*rawAnalysis, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return &parsed, nil
	}

	candidate, ok := firstJSONObject(cleaned)
	if !ok {
		return nil, errNoJSON
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

var errNoJSON = jsonError("no JSON object in analysis response")

type jsonError string

func (e jsonError) Error() string { return string(e) }

// firstJSONObject extracts the first balanced {...} substring.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// sanitize clamps the model output into the documented contract.
func sanitize(raw *rawAnalysis) *services.AnswerAnalysis {
	score, _ := raw.ImportanceScore.Int64()
	result := &services.AnswerAnalysis{
		ImportanceScore: clampScore(int(score)),
	}

	if len(raw.Tags) > maxTags {
		raw.Tags = raw.Tags[:maxTags]
	}
	result.Tags = raw.Tags
	if result.Tags == nil {
		result.Tags = []string{}
	}

	followUp := raw.FollowUpQuestion
	if followUp == nil {
		followUp = raw.FollowUpSnake
	}
	if followUp != nil && strings.TrimSpace(*followUp) != "" {
		result.FollowUpQuestion = followUp
	}

	return result
}

func clampScore(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// tagKeywords maps category tags to the substrings that trigger them.
// "struggl" deliberately catches struggle/struggled/struggling.
var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{"family", []string{"father", "mother", "family"}},
	{"career", []string{"work", "job", "career"}},
	{"hardship", []string{"struggl", "hard", "difficult"}},
	{"achievement", []string{"proud", "achievement"}},
}

// followUpByTag is the fixed priority order for the fallback follow-up.
var followUpByTag = []struct {
	tag      string
	question string
}{
	{"family", "Can you tell me a specific memory involving that family member?"},
	{"hardship", "How did you cope with that period in your life?"},
	{"achievement", "Why was this moment especially meaningful to you?"},
}

// Fallback is the deterministic rule-based analyzer. Same input always
// yields the same result.
func Fallback(question, answer string) *services.AnswerAnalysis {
	text := strings.ToLower(answer)

	tags := []string{}
	for _, cat := range tagKeywords {
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, cat.tag)
				break
			}
		}
	}

	score := minScore
	if len(answer) > longAnswerThreshold {
		score++
	}
	if len(tags) > 0 {
		score++
	}
	score = clampScore(score)

	var followUp *string
	for _, f := range followUpByTag {
		if containsTag(tags, f.tag) {
			q := f.question
			followUp = &q
			break
		}
	}
	if followUp == nil && len(answer) > detailedAnswerThreshold {
		q := "That's very detailed — can you tell me why this memory stands out?"
		followUp = &q
	}

	return &services.AnswerAnalysis{
		ImportanceScore:  score,
		Tags:             tags,
		FollowUpQuestion: followUp,
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
