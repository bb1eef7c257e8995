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

// UserRepository defines the interface for user and friendship data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateFriendship(ctx context.Context, link *models.Friendship) error
	FriendshipExists(ctx context.Context, userID, friendID string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]models.User, error)
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
	          VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at)`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	exec := GetExecutor(ctx, r.db)
	if _, err := exec.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT * FROM users WHERE id = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT * FROM users WHERE username = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *sqlxUserRepository) CreateFriendship(ctx context.Context, link *models.Friendship) error {
	query := `INSERT INTO friendships (id, user_id, friend_id, created_at)
	          VALUES (:id, :user_id, :friend_id, :created_at)`

	link.CreatedAt = time.Now().UTC()

	exec := GetExecutor(ctx, r.db)
	if _, err := exec.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) FriendshipExists(ctx context.Context, userID, friendID string) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM friendships WHERE user_id = ? AND friend_id = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return count > 0, nil
}

func (r *sqlxUserRepository) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	var friends []models.User
	query := r.db.Rebind(`SELECT u.* FROM users u
	          JOIN friendships f ON f.friend_id = u.id
	          WHERE f.user_id = ?
	          ORDER BY u.username`)

	err := GetExecutor(ctx, r.db).SelectContext(ctx, &friends, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}
