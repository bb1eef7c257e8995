package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// AttemptStat is a per-user aggregate over one session's attempt log.
type AttemptStat struct {
	UserID       string `db:"user_id"`
	Total        int    `db:"total"`
	CorrectCount int    `db:"correct_count"`
}

// LastActivityRow holds a user's most recent attempt time in a session.
type LastActivityRow struct {
	UserID      string    `db:"user_id"`
	LastAttempt time.Time `db:"last_attempt"`
}

// WrongAttemptRow is one (word, user) pair with at least one incorrect attempt.
type WrongAttemptRow struct {
	WordID string `db:"word_id"`
	UserID string `db:"user_id"`
}

// LeaderboardRow aggregates one user's correct attempts in a window.
type LeaderboardRow struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	CorrectCount int    `db:"correct_count"`
}

// SessionRepository defines the interface for session and attempt data operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, sess *models.StudySession) error
	GetSessionByID(ctx context.Context, id string) (*models.StudySession, error)
	ListSessionsByParticipant(ctx context.Context, userID string) ([]models.StudySession, error)
	ListSessionsByCreator(ctx context.Context, userID string) ([]models.StudySession, error)
	ListSharedSessions(ctx context.Context, userID, otherID string) ([]models.StudySession, error)
	UpdateSessionStatus(ctx context.Context, id, status string) error
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAttemptsBySession(ctx context.Context, sessionID string) error
	CreateAttempt(ctx context.Context, att *models.Attempt) error
	GetCorrectWordIDs(ctx context.Context, sessionID, userID, direction string) ([]string, error)
	GetSessionStats(ctx context.Context, sessionID string) ([]AttemptStat, error)
	GetLastActivity(ctx context.Context, sessionID string) ([]LastActivityRow, error)
	GetWrongAttempts(ctx context.Context, sessionID string) ([]WrongAttemptRow, error)
	GetLeaderboard(ctx context.Context, since *time.Time, limit int) ([]LeaderboardRow, error)
	GetAttemptsSince(ctx context.Context, since time.Time, userIDs []string) ([]models.Attempt, error)
}

type sqlxSessionRepository struct {
	db *sqlx.DB
}

// NewSQLXSessionRepository creates a new instance of sqlxSessionRepository.
func NewSQLXSessionRepository(db *sqlx.DB) SessionRepository {
	return &sqlxSessionRepository{db: db}
}

func (r *sqlxSessionRepository) CreateSession(ctx context.Context, sess *models.StudySession) error {
	query := `INSERT INTO study_sessions
	          (id, wordlist_id, created_by, user_a_id, user_b_id, status, zh2en_ratio, practice_ratio, practice_pool, created_at, last_activity)
	          VALUES (:id, :wordlist_id, :created_by, :user_a_id, :user_b_id, :status, :zh2en_ratio, :practice_ratio, :practice_pool, :created_at, :last_activity)`

	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.LastActivity = now

	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, sess); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) GetSessionByID(ctx context.Context, id string) (*models.StudySession, error) {
	var sess models.StudySession
	query := r.db.Rebind(`SELECT * FROM study_sessions WHERE id = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &sess, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	return &sess, nil
}

func (r *sqlxSessionRepository) ListSessionsByParticipant(ctx context.Context, userID string) ([]models.StudySession, error) {
	var rows []models.StudySession
	query := r.db.Rebind(`SELECT * FROM study_sessions
	          WHERE user_a_id = ? OR user_b_id = ?
	          ORDER BY last_activity DESC`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions by participant: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) ListSessionsByCreator(ctx context.Context, userID string) ([]models.StudySession, error) {
	var rows []models.StudySession
	query := r.db.Rebind(`SELECT * FROM study_sessions WHERE created_by = ? ORDER BY last_activity DESC`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions by creator: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) ListSharedSessions(ctx context.Context, userID, otherID string) ([]models.StudySession, error) {
	var rows []models.StudySession
	query := r.db.Rebind(`SELECT * FROM study_sessions
	          WHERE (user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)
	          ORDER BY last_activity DESC`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, otherID, otherID, userID); err != nil {
		return nil, fmt.Errorf("failed to list shared sessions: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) UpdateSessionStatus(ctx context.Context, id, status string) error {
	query := r.db.Rebind(`UPDATE study_sessions SET status = ?, last_activity = ? WHERE id = ?`)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE study_sessions SET last_activity = ? WHERE id = ?`)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) DeleteSession(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM study_sessions WHERE id = ?`)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) DeleteAttemptsBySession(ctx context.Context, sessionID string) error {
	query := r.db.Rebind(`DELETE FROM attempts WHERE session_id = ?`)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session attempts: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) CreateAttempt(ctx context.Context, att *models.Attempt) error {
	query := `INSERT INTO attempts (id, session_id, user_id, word_id, direction, answer_text, correct, created_at)
	          VALUES (:id, :session_id, :user_id, :word_id, :direction, :answer_text, :correct, :created_at)`

	att.CreatedAt = time.Now().UTC()

	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, att); err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *sqlxSessionRepository) GetCorrectWordIDs(ctx context.Context, sessionID, userID, direction string) ([]string, error) {
	var ids []string
	query := r.db.Rebind(`SELECT DISTINCT word_id FROM attempts
	          WHERE session_id = ? AND user_id = ? AND direction = ? AND correct`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ids, query, sessionID, userID, direction); err != nil {
		return nil, fmt.Errorf("failed to get correct word ids: %w", err)
	}
	return ids, nil
}

func (r *sqlxSessionRepository) GetSessionStats(ctx context.Context, sessionID string) ([]AttemptStat, error) {
	var rows []AttemptStat
	query := r.db.Rebind(`SELECT user_id,
	          COUNT(*) AS total,
	          SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct_count
	          FROM attempts WHERE session_id = ? GROUP BY user_id`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) GetLastActivity(ctx context.Context, sessionID string) ([]LastActivityRow, error) {
	var rows []LastActivityRow
	query := r.db.Rebind(`SELECT user_id, MAX(created_at) AS last_attempt
	          FROM attempts WHERE session_id = ? GROUP BY user_id`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get last activity: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) GetWrongAttempts(ctx context.Context, sessionID string) ([]WrongAttemptRow, error) {
	var rows []WrongAttemptRow
	query := r.db.Rebind(`SELECT DISTINCT word_id, user_id FROM attempts
	          WHERE session_id = ? AND NOT correct`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get wrong attempts: %w", err)
	}
	return rows, nil
}

// GetLeaderboard aggregates correct attempts per user, optionally limited
// to attempts at or after since. Ties are broken by username so the
// ordering is deterministic.
func (r *sqlxSessionRepository) GetLeaderboard(ctx context.Context, since *time.Time, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	var err error
	if since != nil {
		query := r.db.Rebind(`SELECT u.id AS user_id, u.username, COUNT(*) AS correct_count
		          FROM attempts a JOIN users u ON u.id = a.user_id
		          WHERE a.correct AND a.created_at >= ?
		          GROUP BY u.id, u.username
		          ORDER BY correct_count DESC, u.username ASC
		          LIMIT ?`)
		err = GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, *since, limit)
	} else {
		query := r.db.Rebind(`SELECT u.id AS user_id, u.username, COUNT(*) AS correct_count
		          FROM attempts a JOIN users u ON u.id = a.user_id
		          WHERE a.correct
		          GROUP BY u.id, u.username
		          ORDER BY correct_count DESC, u.username ASC
		          LIMIT ?`)
		err = GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return rows, nil
}

func (r *sqlxSessionRepository) GetAttemptsSince(ctx context.Context, since time.Time, userIDs []string) ([]models.Attempt, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM attempts WHERE created_at >= ? AND user_id IN (?)`, since, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build attempts query: %w", err)
	}
	var rows []models.Attempt
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get attempts since: %w", err)
	}
	return rows, nil
}
