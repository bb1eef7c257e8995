package domain

import "time"

// Direction of a quiz prompt. Zh2En shows the definition and expects the
// term; En2Zh shows the term and expects the definition.
type Direction string

const (
	DirectionZh2En  Direction = "zh2en"
	DirectionEn2Zh  Direction = "en2zh"
	DirectionRandom Direction = "random"
)

// ParseDirection validates a direction query value. Empty means random.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionZh2En, DirectionEn2Zh, DirectionRandom:
		return Direction(s), nil
	case "":
		return DirectionRandom, nil
	default:
		return "", NewValidationError("direction must be zh2en, en2zh or random")
	}
}

// Session statuses. A session toggles active<->archived and is otherwise
// only ever deleted.
const (
	SessionStatusActive   = "active"
	SessionStatusArchived = "archived"
)

// PointsPerCorrect is the score contribution of one correct attempt.
// Points are always derived from the attempt log, never stored.
const PointsPerCorrect = 10

// Ratios applied when a create request omits them.
const (
	DefaultZh2EnRatio    = 50
	DefaultPracticeRatio = 100
)

// Session is a two-participant async quiz pairing bound to a fixed subset
// of one wordlist. The practice pool is chosen at creation time and stays
// stable for the session's entire lifetime.
type Session struct {
	ID            string
	WordlistID    string
	CreatedBy     string
	UserAID       string
	UserBID       string
	Status        string
	Zh2EnRatio    int
	PracticeRatio int
	PracticePool  []string
	CreatedAt     time.Time
	LastActivity  time.Time
}

// HasParticipant reports whether userID is one of the two participants.
func (s *Session) HasParticipant(userID string) bool {
	return userID == s.UserAID || userID == s.UserBID
}

// Validate validates the session.
func (s *Session) Validate() error {
	if s.WordlistID == "" {
		return NewValidationError("wordlist is required")
	}
	if s.UserAID == "" || s.UserBID == "" {
		return NewValidationError("two participants are required")
	}
	if s.UserAID == s.UserBID {
		return NewValidationError("participants must be distinct")
	}
	if s.Zh2EnRatio < 0 || s.Zh2EnRatio > 100 {
		return NewValidationError("zh2en_ratio must be between 0 and 100")
	}
	if s.PracticeRatio <= 0 || s.PracticeRatio > 100 {
		return NewValidationError("practice_ratio must be between 1 and 100")
	}
	return nil
}

// Attempt is one graded answer in a session. The attempt log is
// append-only; rows are removed only when their session is deleted.
type Attempt struct {
	ID        string
	SessionID string
	UserID    string
	WordID    string
	Direction Direction
	Answer    string
	Correct   bool
	CreatedAt time.Time
}
