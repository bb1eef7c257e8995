// Package extractor implements domain.VocabularyExtractor on top of
// multimodal LLM providers via langchaingo.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const extractionPrompt = `You are a vocabulary extraction assistant. The image contains vocabulary
study material (a textbook page, notebook, flashcard photo, or screenshot).

Extract every vocabulary entry you can identify. For each entry provide:
1. "term": the word or phrase being studied (required)
2. "definition": its meaning or translation, if visible
3. "example": an example sentence, if visible

Respond with ONLY a JSON array of objects, one per entry:
[{"term": "ability", "definition": "能力", "example": "She has the ability to learn fast."}]

If the image contains no vocabulary, respond with [].`

// VisionExtractor extracts word candidates from images using any
// langchaingo multimodal model.
type VisionExtractor struct {
	model   llms.Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIVisionExtractor creates an extractor backed by an OpenAI
// vision-capable model.
func NewOpenAIVisionExtractor(apiKey, model string, logger *zap.Logger) (domain.VocabularyExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}
	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	logger.Info("Initialized OpenAI vision extractor", zap.String("model", model))
	return &VisionExtractor{model: llm, timeout: 60 * time.Second, logger: logger}, nil
}

// NewOllamaVisionExtractor creates an extractor backed by a local Ollama
// multimodal model such as llava.
func NewOllamaVisionExtractor(serverURL, model string, logger *zap.Logger) (domain.VocabularyExtractor, error) {
	httpClient := &http.Client{Timeout: 120 * time.Second}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	logger.Info("Initialized Ollama vision extractor",
		zap.String("server_url", serverURL), zap.String("model", model))
	return &VisionExtractor{model: llm, timeout: 120 * time.Second, logger: logger}, nil
}

// ExtractFromImage sends the image with the extraction prompt and parses
// the JSON array reply into word candidates.
func (e *VisionExtractor) ExtractFromImage(ctx context.Context, image []byte, mimeType string) ([]domain.WordCandidate, error) {
	if len(image) == 0 {
		return nil, domain.NewValidationError("image is empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(extractionPrompt),
			},
		},
	}

	resp, err := e.model.GenerateContent(ctx, content, llms.WithTemperature(0.1))
	if err != nil {
		e.logger.Error("Vision extraction call failed", zap.Error(err))
		return nil, domain.NewLLMServiceError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewLLMServiceError(fmt.Errorf("model returned no choices"))
	}

	candidates, err := parseCandidates(resp.Choices[0].Content)
	if err != nil {
		e.logger.Error("Failed to parse vision extraction reply",
			zap.Error(err), zap.String("reply", resp.Choices[0].Content))
		return nil, domain.NewLLMServiceError(err)
	}

	e.logger.Info("Extracted vocabulary from image", zap.Int("count", len(candidates)))
	return candidates, nil
}

// parseCandidates strips reasoning tags and code fences, then decodes the
// JSON array and drops entries without a term.
func parseCandidates(reply string) ([]domain.WordCandidate, error) {
	cleaned := strings.TrimSpace(reply)
	if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 {
		cleaned = cleaned[thinkEnd+len("</think>"):]
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw []domain.WordCandidate
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	out := make([]domain.WordCandidate, 0, len(raw))
	for _, c := range raw {
		c.Term = strings.TrimSpace(c.Term)
		if c.Term == "" {
			continue
		}
		c.Definition = strings.TrimSpace(c.Definition)
		c.Example = strings.TrimSpace(c.Example)
		out = append(out, c)
	}
	return out, nil
}

var _ domain.VocabularyExtractor = (*VisionExtractor)(nil)
