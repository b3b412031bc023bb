package repository

import (
	"context"
	"errors"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a write violates the unique word constraint.
	ErrDuplicate = errors.New("repository: duplicate word")
)

// WordRepository defines the interface for word persistence operations
type WordRepository interface {
	// Count returns the number of words matching the filter
	Count(ctx context.Context, filter models.WordFilter) (int64, error)

	// List returns one page of matching words ordered by id ascending
	List(ctx context.Context, filter models.WordFilter, offset, limit int) ([]*models.Word, error)

	// GetRandom picks a uniformly random matching word
	GetRandom(ctx context.Context, filter models.WordFilter) (*models.Word, error)

	// GetByID retrieves a word by its ID
	GetByID(ctx context.Context, id int64) (*models.Word, error)

	// GetByWord retrieves a word by its normalized text
	GetByWord(ctx context.Context, word string) (*models.Word, error)

	// Create inserts a new word and returns it with store-assigned fields
	Create(ctx context.Context, word *models.Word) (*models.Word, error)

	// Update applies the non-nil fields of patch and returns the new state
	Update(ctx context.Context, id int64, patch *models.UpdateWordRequest) (*models.Word, error)

	// Delete removes a word by ID
	Delete(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close() error
}
