package models

import (
	"database/sql"
	"time"
)

// User represents a row in the users table.
type User struct {
	ID           string         `db:"id"` // ULID
	Username     string         `db:"username"`
	Email        sql.NullString `db:"email"`
	PasswordHash string         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Friendship represents one direction of a friend link. Mutual adds
// always write the row pair, so a single-direction query is sufficient.
type Friendship struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	FriendID  string    `db:"friend_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Wordlist represents a row in the wordlists table.
type Wordlist struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Word represents a row in the words table.
type Word struct {
	ID         string         `db:"id"`
	WordlistID string         `db:"wordlist_id"`
	Term       string         `db:"term"`
	Definition sql.NullString `db:"definition"`
	Example    sql.NullString `db:"example"`
	CreatedAt  time.Time      `db:"created_at"`
}

// StudySession represents a row in the study_sessions table. The practice
// pool is the immutable word subset assigned at creation, stored as JSON.
type StudySession struct {
	ID            string      `db:"id"`
	WordlistID    string      `db:"wordlist_id"`
	CreatedBy     string      `db:"created_by"`
	UserAID       string      `db:"user_a_id"`
	UserBID       string      `db:"user_b_id"`
	Status        string      `db:"status"`
	Zh2EnRatio    int         `db:"zh2en_ratio"`
	PracticeRatio int         `db:"practice_ratio"`
	PracticePool  StringSlice `db:"practice_pool"`
	CreatedAt     time.Time   `db:"created_at"`
	LastActivity  time.Time   `db:"last_activity"`
}

// Attempt represents a row in the attempts table. The log is append-only
// and only removed by session deletion. word_id is kept as a historical
// reference even after the word itself is deleted.
type Attempt struct {
	ID         string         `db:"id"`
	SessionID  string         `db:"session_id"`
	UserID     string         `db:"user_id"`
	WordID     string         `db:"word_id"`
	Direction  string         `db:"direction"`
	AnswerText sql.NullString `db:"answer_text"`
	Correct    bool           `db:"correct"`
	CreatedAt  time.Time      `db:"created_at"`
}
