package dto

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the JWT claims carried by issued bearer tokens.
type AuthClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RegisterRequest is accepted as JSON or form fields.
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

// LoginRequest is form-encoded, mirroring an OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *UserResponse `json:"user,omitempty"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// MessageResponse carries a human-readable outcome for simple actions.
type MessageResponse struct {
	Message string `json:"message"`
}
