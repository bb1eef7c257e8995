package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Leaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("derives points and keeps the repository order", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetLeaderboard", ctx, (*time.Time)(nil), leaderboardLimit).
			Return([]repository.LeaderboardRow{
				{UserID: "ua", Username: "alice", CorrectCount: 7},
				{UserID: "ub", Username: "bob", CorrectCount: 7},
				{UserID: "uc", Username: "carol", CorrectCount: 2},
			}, nil)

		svc := NewReportService(sessionRepo, new(MockUserRepository), nil)
		entries, err := svc.Leaderboard(ctx, "")

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, 70, entries[0].Points)
		assert.Equal(t, "alice", entries[0].Username)
		assert.Equal(t, "bob", entries[1].Username)
		assert.Equal(t, 20, entries[2].Points)
	})

	t.Run("weekly period passes a window", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetLeaderboard", ctx, mock.MatchedBy(func(since *time.Time) bool {
			return since != nil && time.Since(*since) > 6*24*time.Hour
		}), leaderboardLimit).Return([]repository.LeaderboardRow{}, nil)

		svc := NewReportService(sessionRepo, new(MockUserRepository), nil)
		_, err := svc.Leaderboard(ctx, PeriodWeekly)

		require.NoError(t, err)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("daily period uses a one-day window", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetLeaderboard", ctx, mock.MatchedBy(func(since *time.Time) bool {
			return since != nil && time.Since(*since) < 25*time.Hour
		}), leaderboardLimit).Return([]repository.LeaderboardRow{}, nil)

		svc := NewReportService(sessionRepo, new(MockUserRepository), nil)
		_, err := svc.Leaderboard(ctx, PeriodDaily)

		require.NoError(t, err)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown periods", func(t *testing.T) {
		svc := NewReportService(new(MockSessionRepository), new(MockUserRepository), nil)
		_, err := svc.Leaderboard(ctx, "hourly")

		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodeValidation, de.Code)
	})

	t.Run("serves from cache when populated", func(t *testing.T) {
		cached, err := json.Marshal([]dto.LeaderboardEntry{{UserID: "ua", Username: "alice", Points: 50}})
		require.NoError(t, err)

		cache := new(MockCache)
		cache.On("Get", ctx, "leaderboard:all_time").Return(string(cached), nil)
		sessionRepo := new(MockSessionRepository)

		svc := NewReportService(sessionRepo, new(MockUserRepository), cache)
		entries, err := svc.Leaderboard(ctx, PeriodAllTime)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 50, entries[0].Points)
		sessionRepo.AssertNotCalled(t, "GetLeaderboard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fills the cache on a miss", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", ctx, "leaderboard:all_time").Return("", domain.ErrCacheMiss)
		cache.On("Set", ctx, "leaderboard:all_time", mock.AnythingOfType("string"), leaderboardCacheTTL).Return(nil)

		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetLeaderboard", ctx, (*time.Time)(nil), leaderboardLimit).
			Return([]repository.LeaderboardRow{{UserID: "ua", Username: "alice", CorrectCount: 1}}, nil)

		svc := NewReportService(sessionRepo, new(MockUserRepository), cache)
		entries, err := svc.Leaderboard(ctx, PeriodAllTime)

		require.NoError(t, err)
		assert.Len(t, entries, 1)
		cache.AssertExpectations(t)
	})
}

func TestReportService_WeeklyReport(t *testing.T) {
	ctx := context.Background()
	alice := &models.User{ID: "ua", Username: "alice"}
	bob := &models.User{ID: "ub", Username: "bob"}

	t.Run("aggregates totals, points and mastered words", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetUserByID", ctx, "ua").Return(alice, nil)
		userRepo.On("GetUserByUsername", ctx, "bob").Return(bob, nil)

		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetAttemptsSince", ctx, mock.AnythingOfType("time.Time"), []string{"ua", "ub"}).
			Return([]models.Attempt{
				// alice: w1 mastered (two correct), one miss
				{UserID: "ua", WordID: "w1", Correct: true},
				{UserID: "ua", WordID: "w1", Correct: true},
				{UserID: "ua", WordID: "w2", Correct: false},
				// bob: one correct, nothing mastered
				{UserID: "ub", WordID: "w1", Correct: true},
			}, nil)
		sessionRepo.On("ListSharedSessions", ctx, "ua", "ub").
			Return([]models.StudySession{{
				ID: "s1", Status: domain.SessionStatusActive, CreatedBy: "ua",
				PracticePool: models.StringSlice{"w1", "w2"},
			}}, nil)

		svc := NewReportService(sessionRepo, userRepo, nil)
		report, err := svc.WeeklyReport(ctx, "ua", "bob")

		require.NoError(t, err)
		assert.Equal(t, 3, report.User1.Total)
		assert.Equal(t, 2, report.User1.Correct)
		assert.InDelta(t, 2.0/3.0, report.User1.Accuracy, 1e-9)
		assert.Equal(t, 20, report.User1.Points)
		assert.Equal(t, 1, report.User1.Mastered)

		assert.Equal(t, 1, report.User2.Total)
		assert.Equal(t, 0, report.User2.Mastered)

		require.Len(t, report.OverlapSessions, 1)
		assert.Equal(t, "s1", report.OverlapSessions[0].ID)
		assert.Equal(t, 2, report.OverlapSessions[0].PracticePoolSize)
	})

	t.Run("no attempts means zero accuracy", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetUserByID", ctx, "ua").Return(alice, nil)
		userRepo.On("GetUserByUsername", ctx, "bob").Return(bob, nil)

		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetAttemptsSince", ctx, mock.AnythingOfType("time.Time"), []string{"ua", "ub"}).
			Return([]models.Attempt{}, nil)
		sessionRepo.On("ListSharedSessions", ctx, "ua", "ub").Return([]models.StudySession{}, nil)

		svc := NewReportService(sessionRepo, userRepo, nil)
		report, err := svc.WeeklyReport(ctx, "ua", "bob")

		require.NoError(t, err)
		assert.Equal(t, 0.0, report.User1.Accuracy)
		assert.Equal(t, 0.0, report.User2.Accuracy)
		assert.Empty(t, report.OverlapSessions)
	})

	t.Run("unknown second user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetUserByID", ctx, "ua").Return(alice, nil)
		userRepo.On("GetUserByUsername", ctx, "ghost").Return(nil, nil)

		svc := NewReportService(new(MockSessionRepository), userRepo, nil)
		_, err := svc.WeeklyReport(ctx, "ua", "ghost")
		assert.True(t, domain.IsNotFound(err))
	})
}
