package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

// SQLiteRepository implements WordRepository using SQLite
type SQLiteRepository struct {
	db *sqlx.DB
	d  dialect
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: sqlx.NewDb(db, "sqlite3"), d: sqliteDialect}
}

// OpenSQLite opens a SQLite database and verifies the connection. SQLite
// serialises writers, so the pool is limited to one connection.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Count returns the number of words matching the filter
func (r *SQLiteRepository) Count(ctx context.Context, filter models.WordFilter) (int64, error) {
	query, args, err := r.d.countQuery(filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, mapSQLiteError(err, "count words")
	}
	return count, nil
}

// List returns one page of matching words ordered by id
func (r *SQLiteRepository) List(ctx context.Context, filter models.WordFilter, offset, limit int) ([]*models.Word, error) {
	query, args, err := r.d.listQuery(filter, offset, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	words := []*models.Word{}
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, mapSQLiteError(err, "list words")
	}
	return words, nil
}

// GetRandom retrieves a random matching word
func (r *SQLiteRepository) GetRandom(ctx context.Context, filter models.WordFilter) (*models.Word, error) {
	return r.getOne(ctx, r.db, r.d.randomQuery(filter), "get random word")
}

// GetByID retrieves a word by its ID
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	return r.getOne(ctx, r.db, r.d.byIDQuery(id), fmt.Sprintf("get word %d", id))
}

// GetByWord retrieves a word by the word text itself
func (r *SQLiteRepository) GetByWord(ctx context.Context, word string) (*models.Word, error) {
	return r.getOne(ctx, r.db, r.d.byWordQuery(word), fmt.Sprintf("get word %q", word))
}

// Create inserts a new word and returns the stored row
func (r *SQLiteRepository) Create(ctx context.Context, word *models.Word) (*models.Word, error) {
	query, args, err := r.d.insertQuery(word, time.Now().UTC()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	var created *models.Word
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapSQLiteError(err, fmt.Sprintf("insert word %q", word.Word))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		created, err = r.getOne(ctx, tx, r.d.byIDQuery(id), fmt.Sprintf("get word %d", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update modifies an existing word
func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch *models.UpdateWordRequest) (*models.Word, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	query, args, err := r.d.updateQuery(id, patch, time.Now().UTC()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	var updated *models.Word
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapSQLiteError(err, fmt.Sprintf("update word %d", id))
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("update word %d: %w", id, ErrNotFound)
		}

		updated, err = r.getOne(ctx, tx, r.d.byIDQuery(id), fmt.Sprintf("get word %d", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a word by ID
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.d.deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("delete word %d", id))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete word %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type sqlizer interface {
	ToSql() (string, []any, error)
}

func (r *SQLiteRepository) getOne(ctx context.Context, db sqlx.QueryerContext, q sqlizer, op string) (*models.Word, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var word models.Word
	if err := sqlx.GetContext(ctx, db, &word, query, args...); err != nil {
		return nil, mapSQLiteError(err, op)
	}
	return &word, nil
}

// inTx runs fn in a transaction, rolling back on any error.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// mapSQLiteError converts driver errors into repository errors. Context
// errors pass through unchanged.
func mapSQLiteError(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
