package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

// PgxPool is the subset of *pgxpool.Pool used by PostgresRepository. It is
// satisfied by pgxmock in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig holds pgx pool sizing.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewPool creates a pgxpool.Pool, applies pool settings and verifies
// connectivity with a ping.
func NewPool(ctx context.Context, dsn string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PostgresRepository implements WordRepository on PostgreSQL.
type PostgresRepository struct {
	pool PgxPool
	d    dialect
}

func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool, d: postgresDialect}
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.WordFilter) (int64, error) {
	query, args, err := r.d.countQuery(filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapPgError(err, "count words")
	}
	return count, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.WordFilter, offset, limit int) ([]*models.Word, error) {
	query, args, err := r.d.listQuery(filter, offset, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	words := []*models.Word{}
	if err := pgxscan.Select(ctx, r.pool, &words, query, args...); err != nil {
		return nil, mapPgError(err, "list words")
	}
	return words, nil
}

func (r *PostgresRepository) GetRandom(ctx context.Context, filter models.WordFilter) (*models.Word, error) {
	return r.getOne(ctx, r.d.randomQuery(filter), "get random word")
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	return r.getOne(ctx, r.d.byIDQuery(id), fmt.Sprintf("get word %d", id))
}

func (r *PostgresRepository) GetByWord(ctx context.Context, word string) (*models.Word, error) {
	return r.getOne(ctx, r.d.byWordQuery(word), fmt.Sprintf("get word %q", word))
}

func (r *PostgresRepository) Create(ctx context.Context, word *models.Word) (*models.Word, error) {
	q := r.d.insertQuery(word, time.Now().UTC()).Suffix(returningWord)
	return r.getOne(ctx, q, fmt.Sprintf("insert word %q", word.Word))
}

// Update applies the patch in a single UPDATE ... RETURNING statement.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch *models.UpdateWordRequest) (*models.Word, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	q := r.d.updateQuery(id, patch, time.Now().UTC()).Suffix(returningWord)
	return r.getOne(ctx, q, fmt.Sprintf("update word %d", id))
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.d.deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("delete word %d", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete word %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, q sqlizer, op string) (*models.Word, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var word models.Word
	if err := pgxscan.Get(ctx, r.pool, &word, query, args...); err != nil {
		return nil, mapPgError(err, op)
	}
	return &word, nil
}

// mapPgError converts pgx errors into repository errors. Context errors pass
// through unchanged.
func mapPgError(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
