package domain

import "time"

// User represents an account in the system.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Friendship is a directed friend link. Adding a friend always creates
// both directions, so reads only ever need to follow user_id -> friend_id.
type Friendship struct {
	ID        string
	UserID    string
	FriendID  string
	CreatedAt time.Time
}

// Validate validates the friendship link.
func (f *Friendship) Validate() error {
	if f.UserID == "" || f.FriendID == "" {
		return NewValidationError("both user IDs are required")
	}
	if f.UserID == f.FriendID {
		return NewValidationError("cannot add yourself as a friend")
	}
	return nil
}
