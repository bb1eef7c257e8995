package service

import (
	"context"
	"testing"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ownedWordlist() *models.Wordlist {
	return &models.Wordlist{ID: "wl1", OwnerID: "ua", Name: "HSK"}
}

func TestIngestionService_PreviewUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("parses CSV into candidates", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		csv := []byte("term,definition,example\napple,苹果,An apple a day.\n,missing term,\npear,梨,\n")
		resp, err := svc.PreviewUpload(ctx, "ua", "wl1", "upload.csv", csv)

		require.NoError(t, err)
		require.Len(t, resp.Words, 2)
		assert.Equal(t, "apple", resp.Words[0].Term)
		assert.Equal(t, "梨", resp.Words[1].Definition)
	})

	t.Run("parses JSON into candidates", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		payload := []byte(`[{"term":"apple","definition":"苹果"},{"term":"pear"}]`)
		resp, err := svc.PreviewUpload(ctx, "ua", "wl1", "upload.json", payload)

		require.NoError(t, err)
		assert.Len(t, resp.Words, 2)
	})

	t.Run("rejects foreign wordlists", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		_, err := svc.PreviewUpload(ctx, "intruder", "wl1", "upload.csv", []byte("term\napple\n"))

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodePermission, de.Code)
	})
}

func TestIngestionService_PreviewFromImage(t *testing.T) {
	ctx := context.Background()

	t.Run("returns extracted candidates without writing", func(t *testing.T) {
		extractor := new(MockExtractor)
		extractor.On("ExtractFromImage", ctx, []byte{1, 2}, "image/png").
			Return([]domain.WordCandidate{{Term: "apple", Definition: "苹果"}}, nil)
		wordlistRepo := new(MockWordlistRepository)

		svc := NewIngestionService(wordlistRepo, extractor, passthroughTxManager{})
		resp, err := svc.PreviewFromImage(ctx, []byte{1, 2}, "image/png")

		require.NoError(t, err)
		require.Len(t, resp.Words, 1)
		wordlistRepo.AssertNotCalled(t, "CreateWords", mock.Anything, mock.Anything)
	})

	t.Run("fails cleanly when no extractor is configured", func(t *testing.T) {
		svc := NewIngestionService(new(MockWordlistRepository), nil, passthroughTxManager{})
		_, err := svc.PreviewFromImage(ctx, []byte{1}, "image/png")

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodeValidation, de.Code)
	})
}

func TestIngestionService_ImportUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and saves in one step", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		var saved []models.Word
		wordlistRepo.On("CreateWords", mock.Anything, mock.AnythingOfType("[]models.Word")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).([]models.Word)
			}).Return(nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		csv := []byte("term,definition\napple,苹果\n,skipped\npear,梨\n")
		resp, err := svc.ImportUpload(ctx, "ua", "wl1", "upload.csv", csv)

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, saved, 2)
		assert.Equal(t, "apple", saved[0].Term)
	})

	t.Run("unparseable file saves nothing", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		_, err := svc.ImportUpload(ctx, "ua", "wl1", "upload.csv", []byte("id,meaning\n1,no term column\n"))

		assert.Error(t, err)
		wordlistRepo.AssertNotCalled(t, "CreateWords", mock.Anything, mock.Anything)
	})
}

func TestIngestionService_SaveWords(t *testing.T) {
	ctx := context.Background()

	t.Run("count equals rows with a term", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		var saved []models.Word
		wordlistRepo.On("CreateWords", mock.Anything, mock.AnythingOfType("[]models.Word")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).([]models.Word)
			}).Return(nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		resp, err := svc.SaveWords(ctx, "ua", "wl1", &dto.SaveWordsRequest{Words: []dto.WordInput{
			{Term: "apple", Definition: "苹果"},
			{Term: "", Definition: "skipped"},
			{Term: "pear"},
		}})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, saved, 2)
		assert.Equal(t, "wl1", saved[0].WordlistID)
		assert.NotEmpty(t, saved[0].ID)
	})

	t.Run("all-termless payload saves nothing and reports zero", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		resp, err := svc.SaveWords(ctx, "ua", "wl1", &dto.SaveWordsRequest{Words: []dto.WordInput{
			{Definition: "no term"},
			{Definition: "still no term"},
		}})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
		wordlistRepo.AssertNotCalled(t, "CreateWords", mock.Anything, mock.Anything)
	})

	t.Run("empty payload reports zero", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewIngestionService(wordlistRepo, nil, passthroughTxManager{})
		resp, err := svc.SaveWords(ctx, "ua", "wl1", &dto.SaveWordsRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
	})
}
