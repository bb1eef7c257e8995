package service

import (
	"context"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/parser"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"
	"github.com/zata-zhangtao/SideBySide/internal/util"

	"go.uber.org/zap"
)

const (
	defaultWordPageSize = 50
	maxWordPageSize     = 500
)

// WordlistService handles wordlist CRUD and word listing.
type WordlistService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreateWordlistRequest) (*dto.WordlistResponse, error)
	List(ctx context.Context, ownerID string) ([]dto.WordlistResponse, error)
	Get(ctx context.Context, ownerID, wordlistID string) (*dto.WordlistResponse, error)
	Delete(ctx context.Context, ownerID, wordlistID string) error
	ListWords(ctx context.Context, ownerID, wordlistID string, limit, offset int) ([]dto.WordResponse, error)
	ExportCSV(ctx context.Context, ownerID, wordlistID string) ([]byte, string, error)
}

type wordlistService struct {
	wordlistRepo repository.WordlistRepository
	txManager    domain.TransactionManager
}

// NewWordlistService creates a new WordlistService.
func NewWordlistService(wordlistRepo repository.WordlistRepository, txManager domain.TransactionManager) WordlistService {
	return &wordlistService{wordlistRepo: wordlistRepo, txManager: txManager}
}

func (s *wordlistService) Create(ctx context.Context, ownerID string, req *dto.CreateWordlistRequest) (*dto.WordlistResponse, error) {
	wl := &domain.Wordlist{OwnerID: ownerID, Name: req.Name, Description: req.Description}
	if err := wl.Validate(); err != nil {
		return nil, err
	}

	row := &models.Wordlist{
		ID:          util.NewULID(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: util.StringToNullString(req.Description),
	}
	if err := s.wordlistRepo.CreateWordlist(ctx, row); err != nil {
		return nil, domain.NewInternalError("failed to create wordlist", err)
	}

	logger.Get().Info("Wordlist created", zap.String("wordlist_id", row.ID), zap.String("owner_id", ownerID))
	return toWordlistResponse(row), nil
}

func (s *wordlistService) List(ctx context.Context, ownerID string) ([]dto.WordlistResponse, error) {
	rows, err := s.wordlistRepo.ListWordlistsByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list wordlists", err)
	}

	out := make([]dto.WordlistResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toWordlistResponse(&rows[i]))
	}
	return out, nil
}

func (s *wordlistService) Get(ctx context.Context, ownerID, wordlistID string) (*dto.WordlistResponse, error) {
	wl, err := s.loadOwned(ctx, ownerID, wordlistID)
	if err != nil {
		return nil, err
	}
	return toWordlistResponse(wl), nil
}

// Delete removes the list and its words. Deleting an already-deleted
// list succeeds so retries are safe.
func (s *wordlistService) Delete(ctx context.Context, ownerID, wordlistID string) error {
	wl, err := s.wordlistRepo.GetWordlistByID(ctx, wordlistID)
	if err != nil {
		return domain.NewInternalError("failed to load wordlist", err)
	}
	if wl == nil {
		return nil
	}
	if wl.OwnerID != ownerID {
		return domain.NewPermissionError("only the owner can delete a wordlist")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.wordlistRepo.DeleteWordlist(txCtx, wordlistID)
	})
	if err != nil {
		return domain.NewInternalError("failed to delete wordlist", err)
	}

	logger.Get().Info("Wordlist deleted", zap.String("wordlist_id", wordlistID))
	return nil
}

func (s *wordlistService) ListWords(ctx context.Context, ownerID, wordlistID string, limit, offset int) ([]dto.WordResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, wordlistID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultWordPageSize
	}
	if limit > maxWordPageSize {
		limit = maxWordPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.wordlistRepo.ListWords(ctx, wordlistID, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("failed to list words", err)
	}

	out := make([]dto.WordResponse, 0, len(rows))
	for _, w := range rows {
		out = append(out, dto.WordResponse{
			ID:         w.ID,
			Term:       w.Term,
			Definition: util.NullStringToString(w.Definition),
			Example:    util.NullStringToString(w.Example),
		})
	}
	return out, nil
}

// ExportCSV renders the full list as a CSV attachment that re-imports
// cleanly. The second return value is the suggested filename.
func (s *wordlistService) ExportCSV(ctx context.Context, ownerID, wordlistID string) ([]byte, string, error) {
	wl, err := s.loadOwned(ctx, ownerID, wordlistID)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.wordlistRepo.ListWords(ctx, wordlistID, maxWordPageSize*100, 0)
	if err != nil {
		return nil, "", domain.NewInternalError("failed to load words", err)
	}

	words := make([]domain.Word, 0, len(rows))
	for _, w := range rows {
		words = append(words, domain.Word{
			ID:         w.ID,
			Term:       w.Term,
			Definition: util.NullStringToString(w.Definition),
			Example:    util.NullStringToString(w.Example),
		})
	}

	data, err := parser.WriteCSV(words)
	if err != nil {
		return nil, "", domain.NewInternalError("failed to render CSV", err)
	}
	return data, wl.Name + ".csv", nil
}

func (s *wordlistService) loadOwned(ctx context.Context, ownerID, wordlistID string) (*models.Wordlist, error) {
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

func toWordlistResponse(wl *models.Wordlist) *dto.WordlistResponse {
	return &dto.WordlistResponse{
		ID:          wl.ID,
		Name:        wl.Name,
		Description: util.NullStringToString(wl.Description),
		CreatedAt:   wl.CreatedAt.UTC().Format(time.RFC3339),
	}
}
