package service

import (
	"context"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateFriendship(ctx context.Context, link *models.Friendship) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockUserRepository) FriendshipExists(ctx context.Context, userID, friendID string) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// --- MockWordlistRepository ---
type MockWordlistRepository struct {
	mock.Mock
}

func (m *MockWordlistRepository) CreateWordlist(ctx context.Context, wl *models.Wordlist) error {
	args := m.Called(ctx, wl)
	return args.Error(0)
}

func (m *MockWordlistRepository) GetWordlistByID(ctx context.Context, id string) (*models.Wordlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wordlist), args.Error(1)
}

func (m *MockWordlistRepository) ListWordlistsByOwner(ctx context.Context, ownerID string) ([]models.Wordlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Wordlist), args.Error(1)
}

func (m *MockWordlistRepository) DeleteWordlist(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWordlistRepository) CreateWords(ctx context.Context, words []models.Word) error {
	args := m.Called(ctx, words)
	return args.Error(0)
}

func (m *MockWordlistRepository) ListWords(ctx context.Context, wordlistID string, limit, offset int) ([]models.Word, error) {
	args := m.Called(ctx, wordlistID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Word), args.Error(1)
}

func (m *MockWordlistRepository) ListWordsByIDs(ctx context.Context, ids []string) ([]models.Word, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Word), args.Error(1)
}

func (m *MockWordlistRepository) GetWordByID(ctx context.Context, id string) (*models.Word, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Word), args.Error(1)
}

func (m *MockWordlistRepository) CountWords(ctx context.Context, wordlistID string) (int, error) {
	args := m.Called(ctx, wordlistID)
	return args.Int(0), args.Error(1)
}

func (m *MockWordlistRepository) ListWordIDs(ctx context.Context, wordlistID string) ([]string, error) {
	args := m.Called(ctx, wordlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- MockSessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, sess *models.StudySession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionByID(ctx context.Context, id string) (*models.StudySession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) ListSessionsByParticipant(ctx context.Context, userID string) ([]models.StudySession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) ListSessionsByCreator(ctx context.Context, userID string) ([]models.StudySession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) ListSharedSessions(ctx context.Context, userID, otherID string) ([]models.StudySession, error) {
	args := m.Called(ctx, userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) UpdateSessionStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSessionRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteAttemptsBySession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) CreateAttempt(ctx context.Context, att *models.Attempt) error {
	args := m.Called(ctx, att)
	return args.Error(0)
}

func (m *MockSessionRepository) GetCorrectWordIDs(ctx context.Context, sessionID, userID, direction string) ([]string, error) {
	args := m.Called(ctx, sessionID, userID, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionRepository) GetSessionStats(ctx context.Context, sessionID string) ([]repository.AttemptStat, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AttemptStat), args.Error(1)
}

func (m *MockSessionRepository) GetLastActivity(ctx context.Context, sessionID string) ([]repository.LastActivityRow, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LastActivityRow), args.Error(1)
}

func (m *MockSessionRepository) GetWrongAttempts(ctx context.Context, sessionID string) ([]repository.WrongAttemptRow, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.WrongAttemptRow), args.Error(1)
}

func (m *MockSessionRepository) GetLeaderboard(ctx context.Context, since *time.Time, limit int) ([]repository.LeaderboardRow, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LeaderboardRow), args.Error(1)
}

func (m *MockSessionRepository) GetAttemptsSince(ctx context.Context, since time.Time, userIDs []string) ([]models.Attempt, error) {
	args := m.Called(ctx, since, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

// --- passthroughTxManager runs the function without a real transaction ---
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- MockExtractor ---
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractFromImage(ctx context.Context, image []byte, mimeType string) ([]domain.WordCandidate, error) {
	args := m.Called(ctx, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WordCandidate), args.Error(1)
}

// --- MockJudge ---
type MockJudge struct {
	mock.Mock
}

func (m *MockJudge) JudgeDefinition(ctx context.Context, term, reference, answer string) (*domain.JudgeResult, error) {
	args := m.Called(ctx, term, reference, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JudgeResult), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
