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

func TestWordlistService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a wordlist", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("CreateWordlist", ctx, mock.AnythingOfType("*models.Wordlist")).Return(nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		resp, err := svc.Create(ctx, "ua", &dto.CreateWordlistRequest{Name: "HSK 4", Description: "exam prep"})

		require.NoError(t, err)
		assert.Equal(t, "HSK 4", resp.Name)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := NewWordlistService(new(MockWordlistRepository), passthroughTxManager{})
		_, err := svc.Create(ctx, "ua", &dto.CreateWordlistRequest{Name: "  "})

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodeValidation, de.Code)
	})
}

func TestWordlistService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)
		wordlistRepo.On("DeleteWordlist", mock.Anything, "wl1").Return(nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		require.NoError(t, svc.Delete(ctx, "ua", "wl1"))
		wordlistRepo.AssertExpectations(t)
	})

	t.Run("deleting a missing wordlist succeeds", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "gone").Return(nil, nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		assert.NoError(t, svc.Delete(ctx, "ua", "gone"))
	})

	t.Run("non-owner may not delete", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		err := svc.Delete(ctx, "intruder", "wl1")

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodePermission, de.Code)
	})
}

func TestWordlistService_ListWords(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the default page size", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)
		wordlistRepo.On("ListWords", ctx, "wl1", defaultWordPageSize, 0).
			Return([]models.Word{{ID: "w1", Term: "apple", Definition: nullStr("苹果")}}, nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		words, err := svc.ListWords(ctx, "ua", "wl1", 0, -3)

		require.NoError(t, err)
		require.Len(t, words, 1)
		assert.Equal(t, "苹果", words[0].Definition)
	})

	t.Run("caps oversized limits", func(t *testing.T) {
		wordlistRepo := new(MockWordlistRepository)
		wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)
		wordlistRepo.On("ListWords", ctx, "wl1", maxWordPageSize, 10).Return([]models.Word{}, nil)

		svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
		_, err := svc.ListWords(ctx, "ua", "wl1", 10000, 10)

		require.NoError(t, err)
		wordlistRepo.AssertExpectations(t)
	})
}

func TestWordlistService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	wordlistRepo := new(MockWordlistRepository)
	wordlistRepo.On("GetWordlistByID", ctx, "wl1").Return(ownedWordlist(), nil)
	wordlistRepo.On("ListWords", ctx, "wl1", mock.AnythingOfType("int"), 0).
		Return([]models.Word{
			{ID: "w1", Term: "apple", Definition: nullStr("苹果"), Example: nullStr("An apple a day.")},
			{ID: "w2", Term: "pear"},
		}, nil)

	svc := NewWordlistService(wordlistRepo, passthroughTxManager{})
	data, filename, err := svc.ExportCSV(ctx, "ua", "wl1")

	require.NoError(t, err)
	assert.Equal(t, "HSK.csv", filename)
	assert.Contains(t, string(data), "term,definition,example")
	assert.Contains(t, string(data), "apple,苹果,An apple a day.")
	assert.Contains(t, string(data), "pear,,")
}
