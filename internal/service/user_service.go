package service

import (
	"context"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"
	"github.com/zata-zhangtao/SideBySide/internal/util"

	"go.uber.org/zap"
)

// UserService handles profile and friendship operations.
type UserService interface {
	GetMe(ctx context.Context, userID string) (*dto.UserResponse, error)
	AddFriend(ctx context.Context, userID, friendUsername string) (*dto.MessageResponse, error)
	ListFriends(ctx context.Context, userID string) ([]dto.UserResponse, error)
}

type userService struct {
	userRepo  repository.UserRepository
	txManager domain.TransactionManager
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, txManager domain.TransactionManager) UserService {
	return &userService{userRepo: userRepo, txManager: txManager}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}
	return &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    util.NullStringToString(user.Email),
	}, nil
}

// AddFriend links the caller and the named user in both directions.
// Adding an existing friend is a no-op that still reports success.
func (s *userService) AddFriend(ctx context.Context, userID, friendUsername string) (*dto.MessageResponse, error) {
	friend, err := s.userRepo.GetUserByUsername(ctx, friendUsername)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up friend", err)
	}
	if friend == nil {
		return nil, domain.NewNotFoundError("no user with that username")
	}

	link := &domain.Friendship{UserID: userID, FriendID: friend.ID}
	if err := link.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.FriendshipExists(ctx, userID, friend.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to check friendship", err)
	}
	if exists {
		return &dto.MessageResponse{Message: "already friends"}, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		forward := &models.Friendship{ID: util.NewULID(), UserID: userID, FriendID: friend.ID}
		if err := s.userRepo.CreateFriendship(txCtx, forward); err != nil {
			return err
		}
		backward := &models.Friendship{ID: util.NewULID(), UserID: friend.ID, FriendID: userID}
		return s.userRepo.CreateFriendship(txCtx, backward)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create friendship", err)
	}

	logger.Get().Info("Friendship created",
		zap.String("user_id", userID), zap.String("friend_id", friend.ID))
	return &dto.MessageResponse{Message: "friend added"}, nil
}

func (s *userService) ListFriends(ctx context.Context, userID string) ([]dto.UserResponse, error) {
	friends, err := s.userRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list friends", err)
	}

	out := make([]dto.UserResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, dto.UserResponse{ID: f.ID, Username: f.Username})
	}
	return out, nil
}
