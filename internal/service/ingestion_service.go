package service

import (
	"context"
	"fmt"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/parser"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"
	"github.com/zata-zhangtao/SideBySide/internal/util"

	"go.uber.org/zap"
)

// IngestionService turns uploaded files and images into reviewed words.
// Previews never write; only SaveWords commits, after the user has seen
// and possibly edited the candidates.
type IngestionService interface {
	PreviewUpload(ctx context.Context, ownerID, wordlistID, filename string, data []byte) (*dto.PreviewResponse, error)
	PreviewFromImage(ctx context.Context, image []byte, mimeType string) (*dto.PreviewResponse, error)
	SaveWords(ctx context.Context, ownerID, wordlistID string, req *dto.SaveWordsRequest) (*dto.SaveWordsResponse, error)
	ImportUpload(ctx context.Context, ownerID, wordlistID, filename string, data []byte) (*dto.SaveWordsResponse, error)
}

type ingestionService struct {
	wordlistRepo repository.WordlistRepository
	extractor    domain.VocabularyExtractor
	txManager    domain.TransactionManager
}

// NewIngestionService creates a new IngestionService. extractor may be
// nil; image previews then fail with a validation error.
func NewIngestionService(
	wordlistRepo repository.WordlistRepository,
	extractor domain.VocabularyExtractor,
	txManager domain.TransactionManager,
) IngestionService {
	return &ingestionService{
		wordlistRepo: wordlistRepo,
		extractor:    extractor,
		txManager:    txManager,
	}
}

// PreviewUpload parses a CSV or JSON file into candidates for review.
func (s *ingestionService) PreviewUpload(ctx context.Context, ownerID, wordlistID, filename string, data []byte) (*dto.PreviewResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, wordlistID); err != nil {
		return nil, err
	}

	candidates, err := parser.SniffAndParse(data, filename)
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{Words: candidatesToInputs(candidates)}, nil
}

// PreviewFromImage extracts candidates from one image synchronously.
func (s *ingestionService) PreviewFromImage(ctx context.Context, image []byte, mimeType string) (*dto.PreviewResponse, error) {
	if s.extractor == nil {
		return nil, domain.NewValidationError("image extraction is not configured")
	}

	candidates, err := s.extractor.ExtractFromImage(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{Words: candidatesToInputs(candidates)}, nil
}

// SaveWords commits reviewed candidates to the wordlist. Rows without a
// term are skipped; the returned count reflects stored rows only.
func (s *ingestionService) SaveWords(ctx context.Context, ownerID, wordlistID string, req *dto.SaveWordsRequest) (*dto.SaveWordsResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, wordlistID); err != nil {
		return nil, err
	}

	rows := make([]models.Word, 0, len(req.Words))
	for _, in := range req.Words {
		w := domain.Word{WordlistID: wordlistID, Term: in.Term}
		if err := w.Validate(); err != nil {
			continue
		}
		rows = append(rows, models.Word{
			ID:         util.NewULID(),
			WordlistID: wordlistID,
			Term:       in.Term,
			Definition: util.StringToNullString(in.Definition),
			Example:    util.StringToNullString(in.Example),
		})
	}
	// The count always equals the rows with a non-empty term, so an
	// all-termless payload is a no-op rather than an error.
	if len(rows) == 0 {
		return &dto.SaveWordsResponse{Message: "saved 0 words", Count: 0}, nil
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.wordlistRepo.CreateWords(txCtx, rows)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to save words", err)
	}

	logger.Get().Info("Words saved",
		zap.String("wordlist_id", wordlistID), zap.Int("count", len(rows)))
	return &dto.SaveWordsResponse{
		Message: fmt.Sprintf("saved %d words", len(rows)),
		Count:   len(rows),
	}, nil
}

// ImportUpload parses a CSV or JSON file and saves it in one step,
// skipping the preview round-trip.
func (s *ingestionService) ImportUpload(ctx context.Context, ownerID, wordlistID, filename string, data []byte) (*dto.SaveWordsResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, wordlistID); err != nil {
		return nil, err
	}

	candidates, err := parser.SniffAndParse(data, filename)
	if err != nil {
		return nil, err
	}
	return s.SaveWords(ctx, ownerID, wordlistID, &dto.SaveWordsRequest{Words: candidatesToInputs(candidates)})
}

func (s *ingestionService) loadOwned(ctx context.Context, ownerID, wordlistID string) (*models.Wordlist, error) {
	wl, err := s.wordlistRepo.GetWordlistByID(ctx, wordlistID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load wordlist", err)
	}
	if wl == nil {
		return nil, domain.NewNotFoundError("wordlist not found")
	}
	if wl.OwnerID != ownerID {
		return nil, domain.NewPermissionError("wordlist belongs to another user")
	}
	return wl, nil
}

func candidatesToInputs(candidates []domain.WordCandidate) []dto.WordInput {
	out := make([]dto.WordInput, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dto.WordInput{
			Term:       c.Term,
			Definition: c.Definition,
			Example:    c.Example,
		})
	}
	return out
}
