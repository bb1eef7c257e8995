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

// WordlistRepository defines the interface for wordlist and word data operations.
type WordlistRepository interface {
	CreateWordlist(ctx context.Context, wl *models.Wordlist) error
	GetWordlistByID(ctx context.Context, id string) (*models.Wordlist, error)
	ListWordlistsByOwner(ctx context.Context, ownerID string) ([]models.Wordlist, error)
	DeleteWordlist(ctx context.Context, id string) error
	CreateWords(ctx context.Context, words []models.Word) error
	ListWords(ctx context.Context, wordlistID string, limit, offset int) ([]models.Word, error)
	ListWordsByIDs(ctx context.Context, ids []string) ([]models.Word, error)
	GetWordByID(ctx context.Context, id string) (*models.Word, error)
	CountWords(ctx context.Context, wordlistID string) (int, error)
	ListWordIDs(ctx context.Context, wordlistID string) ([]string, error)
}

type sqlxWordlistRepository struct {
	db *sqlx.DB
}

// NewSQLXWordlistRepository creates a new instance of sqlxWordlistRepository.
func NewSQLXWordlistRepository(db *sqlx.DB) WordlistRepository {
	return &sqlxWordlistRepository{db: db}
}

func (r *sqlxWordlistRepository) CreateWordlist(ctx context.Context, wl *models.Wordlist) error {
	query := `INSERT INTO wordlists (id, owner_id, name, description, created_at, updated_at)
	          VALUES (:id, :owner_id, :name, :description, :created_at, :updated_at)`

	now := time.Now().UTC()
	wl.CreatedAt = now
	wl.UpdatedAt = now

	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, wl); err != nil {
		return fmt.Errorf("failed to create wordlist: %w", err)
	}
	return nil
}

func (r *sqlxWordlistRepository) GetWordlistByID(ctx context.Context, id string) (*models.Wordlist, error) {
	var wl models.Wordlist
	query := r.db.Rebind(`SELECT * FROM wordlists WHERE id = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &wl, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wordlist by id: %w", err)
	}
	return &wl, nil
}

func (r *sqlxWordlistRepository) ListWordlistsByOwner(ctx context.Context, ownerID string) ([]models.Wordlist, error) {
	var rows []models.Wordlist
	query := r.db.Rebind(`SELECT * FROM wordlists WHERE owner_id = ? ORDER BY created_at DESC`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list wordlists: %w", err)
	}
	return rows, nil
}

// DeleteWordlist removes the list and its words. Attempts referencing the
// deleted words keep their word_id as a historical reference.
func (r *sqlxWordlistRepository) DeleteWordlist(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, r.db)

	if _, err := exec.ExecContext(ctx, r.db.Rebind(`DELETE FROM words WHERE wordlist_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete words of wordlist: %w", err)
	}
	if _, err := exec.ExecContext(ctx, r.db.Rebind(`DELETE FROM wordlists WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete wordlist: %w", err)
	}
	return nil
}

func (r *sqlxWordlistRepository) CreateWords(ctx context.Context, words []models.Word) error {
	if len(words) == 0 {
		return nil
	}
	query := `INSERT INTO words (id, wordlist_id, term, definition, example, created_at)
	          VALUES (:id, :wordlist_id, :term, :definition, :example, :created_at)`

	exec := GetExecutor(ctx, r.db)
	now := time.Now().UTC()
	for i := range words {
		words[i].CreatedAt = now
		if _, err := exec.NamedExecContext(ctx, query, &words[i]); err != nil {
			return fmt.Errorf("failed to insert word %q: %w", words[i].Term, err)
		}
	}
	return nil
}

func (r *sqlxWordlistRepository) ListWords(ctx context.Context, wordlistID string, limit, offset int) ([]models.Word, error) {
	var rows []models.Word
	query := r.db.Rebind(`SELECT * FROM words WHERE wordlist_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, wordlistID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return rows, nil
}

func (r *sqlxWordlistRepository) ListWordsByIDs(ctx context.Context, ids []string) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM words WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build word id query: %w", err)
	}
	var rows []models.Word
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list words by ids: %w", err)
	}
	return rows, nil
}

func (r *sqlxWordlistRepository) GetWordByID(ctx context.Context, id string) (*models.Word, error) {
	var w models.Word
	query := r.db.Rebind(`SELECT * FROM words WHERE id = ?`)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &w, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word by id: %w", err)
	}
	return &w, nil
}

func (r *sqlxWordlistRepository) CountWords(ctx context.Context, wordlistID string) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM words WHERE wordlist_id = ?`)

	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, wordlistID); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

func (r *sqlxWordlistRepository) ListWordIDs(ctx context.Context, wordlistID string) ([]string, error) {
	var ids []string
	query := r.db.Rebind(`SELECT id FROM words WHERE wordlist_id = ? ORDER BY id`)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ids, query, wordlistID); err != nil {
		return nil, fmt.Errorf("failed to list word ids: %w", err)
	}
	return ids, nil
}
