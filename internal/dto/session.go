package dto

// CreateSessionRequest creates a quiz session with a friend. The ratio
// fields are pointers so an omitted value falls back to the default
// instead of reading as zero.
type CreateSessionRequest struct {
	WordlistID     string `json:"wordlist_id" form:"wordlist_id"`
	FriendUsername string `json:"friend_username" form:"friend_username"`
	Zh2EnRatio     *int   `json:"zh2en_ratio" form:"zh2en_ratio"`
	PracticeRatio  *int   `json:"practice_ratio" form:"practice_ratio"`
}

// SessionParticipant identifies one of the two users in a session.
type SessionParticipant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SessionWordlist is the wordlist summary embedded in session detail.
type SessionWordlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SessionResponse is the public shape of a session.
type SessionResponse struct {
	ID               string               `json:"id"`
	Status           string               `json:"status"`
	Zh2EnRatio       int                  `json:"zh2en_ratio"`
	PracticeRatio    int                  `json:"practice_ratio"`
	PracticePoolSize int                  `json:"practice_pool_size"`
	CreatedBy        string               `json:"created_by"`
	Wordlist         *SessionWordlist     `json:"wordlist,omitempty"`
	Participants     []SessionParticipant `json:"participants,omitempty"`
	CreatedAt        string               `json:"created_at,omitempty"`
	LastActivity     string               `json:"last_activity,omitempty"`
}

// NextWordResponse is one quiz prompt. Exhausted is set when every word
// in the practice pool has been answered correctly for the direction.
type NextWordResponse struct {
	WordID    string `json:"word_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	Direction string `json:"direction,omitempty"`
	Exhausted bool   `json:"exhausted"`
}

// SubmitAttemptRequest grades one answer.
type SubmitAttemptRequest struct {
	WordID    string `json:"word_id" form:"word_id"`
	Answer    string `json:"answer" form:"answer"`
	Direction string `json:"direction" form:"direction"`
}

// JudgeDetail explains whether and how the semantic judge participated.
type JudgeDetail struct {
	Used    bool    `json:"used"`
	Reason  string  `json:"reason,omitempty"`
	Verdict string  `json:"verdict,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// AttemptResponse is the grading outcome of one attempt.
type AttemptResponse struct {
	AttemptID     string       `json:"attempt_id"`
	Correct       bool         `json:"correct"`
	PointsAwarded int          `json:"points_awarded"`
	CorrectAnswer string       `json:"correct_answer"`
	Definition    string       `json:"definition,omitempty"`
	Example       string       `json:"example,omitempty"`
	JudgeDetail   *JudgeDetail `json:"judge_detail,omitempty"`
}

// ScoreboardResponse aggregates the session's attempt log per participant.
type ScoreboardResponse struct {
	Scores   map[string]int     `json:"scores"`
	Accuracy map[string]float64 `json:"accuracy"`
	Totals   map[string]int     `json:"totals"`
}

// ProgressResponse is the scoreboard plus per-user last activity.
type ProgressResponse struct {
	ScoreboardResponse
	LastActivity map[string]string `json:"last_activity"`
}

// WrongbookEntry is one word any participant has missed, with who missed it.
type WrongbookEntry struct {
	WordID     string   `json:"word_id"`
	Term       string   `json:"term"`
	Definition string   `json:"definition,omitempty"`
	Example    string   `json:"example,omitempty"`
	WrongBy    []string `json:"wrong_by"`
}

// SetStatusRequest toggles a session between active and archived.
type SetStatusRequest struct {
	Status string `json:"status" form:"status"`
}
