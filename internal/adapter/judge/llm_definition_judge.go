// Package judge implements domain.DefinitionJudge on top of a
// langchaingo chat model.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const judgePromptTemplate = `You are grading a vocabulary quiz answer. The student was shown the
English word "%s" and asked for its meaning.

Reference definition: %s
Student answer: %s

Strictness: %s
- "strict": the answer must cover the core meaning precisely.
- "medium": the answer must convey the core meaning; minor omissions are fine.
- "lenient": any reasonable paraphrase of the meaning passes.

Respond with ONLY a JSON object:
{"verdict": "correct" | "partial" | "incorrect", "is_match": true | false, "score": 0.0-1.0, "reason": "<one sentence>"}`

// LLMDefinitionJudge grades en2zh answers semantically against the stored
// definition. It is optional; grading falls back to exact matching when
// the judge is absent or fails.
type LLMDefinitionJudge struct {
	model      llms.Model
	strictness string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewLLMDefinitionJudge wraps a chat model as a definition judge.
// Strictness must be strict, medium or lenient; anything else falls back
// to medium.
func NewLLMDefinitionJudge(model llms.Model, strictness string, logger *zap.Logger) *LLMDefinitionJudge {
	switch strictness {
	case "strict", "medium", "lenient":
	default:
		strictness = "medium"
	}
	return &LLMDefinitionJudge{
		model:      model,
		strictness: strictness,
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

// JudgeDefinition asks the model whether answer conveys the reference
// definition of term.
func (j *LLMDefinitionJudge) JudgeDefinition(ctx context.Context, term, reference, answer string) (*domain.JudgeResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, domain.NewValidationError("reference definition is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	prompt := fmt.Sprintf(judgePromptTemplate, term, reference, answer, j.strictness)
	resp, err := llms.GenerateFromSinglePrompt(ctx, j.model, prompt, llms.WithTemperature(0.0))
	if err != nil {
		j.logger.Error("Definition judge call failed", zap.Error(err), zap.String("term", term))
		return nil, domain.NewLLMServiceError(err)
	}

	result, err := parseJudgeReply(resp)
	if err != nil {
		j.logger.Error("Failed to parse judge reply", zap.Error(err), zap.String("reply", resp))
		return nil, domain.NewLLMServiceError(err)
	}
	return result, nil
}

func parseJudgeReply(reply string) (*domain.JudgeResult, error) {
	cleaned := strings.TrimSpace(reply)
	if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 {
		cleaned = cleaned[thinkEnd+len("</think>"):]
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result domain.JudgeResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}

	switch result.Verdict {
	case domain.VerdictCorrect, domain.VerdictPartial, domain.VerdictIncorrect:
	default:
		return nil, fmt.Errorf("judge returned unknown verdict %q", result.Verdict)
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 1 {
		result.Score = 1
	}
	return &result, nil
}

var _ domain.DefinitionJudge = (*LLMDefinitionJudge)(nil)
