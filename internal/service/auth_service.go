package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"
	"github.com/zata-zhangtao/SideBySide/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeAccess = "access"

// AuthService handles registration, login and token issuance.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	ValidateToken(tokenString string) (*dto.AuthClaims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessTokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:       userRepo,
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
	}
}

// Register creates an account and returns a fresh access token so the
// client is logged in immediately.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	log := logger.Get()

	if len(req.Username) < 3 {
		return nil, domain.NewValidationError("username must be at least 3 characters")
	}
	if len(req.Password) < 6 {
		return nil, domain.NewValidationError("password must be at least 6 characters")
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, domain.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		ID:           util.NewULID(),
		Username:     req.Username,
		Email:        util.StringToNullString(req.Email),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to create user", err)
	}

	log.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.issueToken(user)
}

// Login verifies credentials and returns an access token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewUnauthorizedError("invalid username or password")
	}

	logger.Get().Info("User logged in", zap.String("user_id", user.ID))
	return s.issueToken(user)
}

// ValidateToken parses and verifies an access token.
func (s *authService) ValidateToken(tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.NewUnauthorizedError("invalid or expired token")
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, domain.NewUnauthorizedError("invalid token type")
	}
	if claims.UserID == "" {
		return nil, domain.NewUnauthorizedError("token is missing a subject")
	}
	return claims, nil
}

func (s *authService) issueToken(user *models.User) (*dto.TokenResponse, error) {
	now := time.Now()
	claims := &dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, domain.NewInternalError("failed to sign token", err)
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User: &dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    util.NullStringToString(user.Email),
		},
	}, nil
}
