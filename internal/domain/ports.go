package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache abstracts the key/value cache used for report aggregations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// TransactionManager runs fn inside a database transaction propagated
// through the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// VocabularyExtractor extracts word candidates from an uploaded image via
// an external vision model. Timeouts are the implementation's concern.
type VocabularyExtractor interface {
	ExtractFromImage(ctx context.Context, image []byte, mimeType string) ([]WordCandidate, error)
}

// JudgeVerdict values returned by the definition judge.
const (
	VerdictCorrect   = "correct"
	VerdictPartial   = "partial"
	VerdictIncorrect = "incorrect"
)

// JudgeResult is the semantic judge's assessment of an en2zh answer.
type JudgeResult struct {
	Verdict string  `json:"verdict"`
	IsMatch bool    `json:"is_match"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// DefinitionJudge optionally overrides rule-based grading for en2zh
// attempts. It is an injected collaborator; grading must not depend on it.
type DefinitionJudge interface {
	JudgeDefinition(ctx context.Context, term, reference, answer string) (*JudgeResult, error)
}
