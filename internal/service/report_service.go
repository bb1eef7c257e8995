package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/repository"

	"go.uber.org/zap"
)

const (
	leaderboardLimit    = 50
	leaderboardCacheTTL = 5 * time.Minute
)

// Leaderboard periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodAllTime = "all_time"
)

// ReportService aggregates cross-session statistics: the points
// leaderboard and the two-user weekly comparison.
type ReportService interface {
	Leaderboard(ctx context.Context, period string) ([]dto.LeaderboardEntry, error)
	WeeklyReport(ctx context.Context, userID, otherUsername string) (*dto.WeeklyReportResponse, error)
}

type reportService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	cache       domain.Cache
}

// NewReportService creates a new ReportService. cache may be nil; the
// leaderboard is then computed on every request.
func NewReportService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, cache domain.Cache) ReportService {
	return &reportService{sessionRepo: sessionRepo, userRepo: userRepo, cache: cache}
}

// Leaderboard ranks users by attempt-derived points over the period.
// Ties are broken by username so repeated calls agree on the order.
func (s *reportService) Leaderboard(ctx context.Context, period string) ([]dto.LeaderboardEntry, error) {
	if period == "" {
		period = PeriodAllTime
	}

	var since *time.Time
	switch period {
	case PeriodAllTime:
	case PeriodDaily:
		t := time.Now().UTC().AddDate(0, 0, -1)
		since = &t
	case PeriodWeekly:
		t := time.Now().UTC().AddDate(0, 0, -7)
		since = &t
	default:
		return nil, domain.NewValidationError("period must be daily, weekly or all_time")
	}

	cacheKey := "leaderboard:" + period
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Leaderboard cache read failed", zap.Error(err))
		}
	}

	rows, err := s.sessionRepo.GetLeaderboard(ctx, since, leaderboardLimit)
	if err != nil {
		return nil, domain.NewInternalError("failed to compute leaderboard", err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.LeaderboardEntry{
			UserID:   row.UserID,
			Username: row.Username,
			Points:   row.CorrectCount * domain.PointsPerCorrect,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), leaderboardCacheTTL); err != nil {
				logger.Get().Warn("Leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

// WeeklyReport compares the caller with another user over the trailing
// seven days: attempt totals, accuracy, points, mastered words and the
// sessions the two share.
func (s *reportService) WeeklyReport(ctx context.Context, userID, otherUsername string) (*dto.WeeklyReportResponse, error) {
	me, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if me == nil {
		return nil, domain.NewNotFoundError("user not found")
	}

	other, err := s.userRepo.GetUserByUsername(ctx, otherUsername)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if other == nil {
		return nil, domain.NewNotFoundError("no user with that username")
	}

	since := time.Now().UTC().AddDate(0, 0, -7)
	attempts, err := s.sessionRepo.GetAttemptsSince(ctx, since, []string{me.ID, other.ID})
	if err != nil {
		return nil, domain.NewInternalError("failed to load attempts", err)
	}

	user1 := dto.UserReportSummary{ID: me.ID, Username: me.Username}
	user2 := dto.UserReportSummary{ID: other.ID, Username: other.Username}
	correctPerWord := map[string]map[string]int{me.ID: {}, other.ID: {}}

	for _, att := range attempts {
		summary := &user1
		if att.UserID == other.ID {
			summary = &user2
		}
		summary.Total++
		if att.Correct {
			summary.Correct++
			correctPerWord[att.UserID][att.WordID]++
		}
	}
	finishSummary(&user1, correctPerWord[me.ID])
	finishSummary(&user2, correctPerWord[other.ID])

	shared, err := s.sessionRepo.ListSharedSessions(ctx, me.ID, other.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load shared sessions", err)
	}
	overlap := make([]dto.SessionResponse, 0, len(shared))
	for i := range shared {
		sess := &shared[i]
		overlap = append(overlap, dto.SessionResponse{
			ID:               sess.ID,
			Status:           sess.Status,
			Zh2EnRatio:       sess.Zh2EnRatio,
			PracticeRatio:    sess.PracticeRatio,
			PracticePoolSize: len(sess.PracticePool),
			CreatedBy:        sess.CreatedBy,
			CreatedAt:        sess.CreatedAt.UTC().Format(time.RFC3339),
			LastActivity:     sess.LastActivity.UTC().Format(time.RFC3339),
		})
	}

	return &dto.WeeklyReportResponse{
		Since:           since.Format(time.RFC3339),
		User1:           user1,
		User2:           user2,
		OverlapSessions: overlap,
	}, nil
}

// finishSummary derives accuracy, points and the mastered count. A word
// counts as mastered after two correct answers inside the window.
func finishSummary(s *dto.UserReportSummary, correctPerWord map[string]int) {
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	s.Points = s.Correct * domain.PointsPerCorrect
	for _, n := range correctPerWord {
		if n >= 2 {
			s.Mastered++
		}
	}
}
