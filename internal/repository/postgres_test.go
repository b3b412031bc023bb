package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return NewPostgresRepository(mock), mock
}

func wordRows(words ...models.Word) *pgxmock.Rows {
	rows := pgxmock.NewRows(wordColumns)
	for _, w := range words {
		rows.AddRow(w.ID, w.Word, w.Definition, w.DifficultyLevel,
			w.PartOfSpeech, w.Pronunciation, w.ExampleSentence, w.ImageURL,
			w.CreatedAt, w.UpdatedAt)
	}
	return rows
}

func sampleWord(id int64, word string) models.Word {
	return models.Word{
		ID:              id,
		Word:            word,
		Definition:      "finding good things by chance",
		DifficultyLevel: models.DifficultyAdvanced,
		PartOfSpeech:    strPtr("noun"),
		CreatedAt:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgresRepository_GetByID(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM words WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnRows(wordRows(sampleWord(1, "serendipity")))
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).
					WithArgs(pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "context errors pass through",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).
					WithArgs(pgxmock.AnyArg()).
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setup(mock)

			got, err := repo.GetByID(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "serendipity", got.Word)
				assert.Equal(t, models.DifficultyAdvanced, got.DifficultyLevel)
				require.NotNil(t, got.PartOfSpeech)
				assert.Equal(t, "noun", *got.PartOfSpeech)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_Count(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM words WHERE difficulty_level = \$1 AND \(word ILIKE \$2`).
		WithArgs("Advanced", "%chance%", "%chance%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	got, err := repo.Count(context.Background(), models.WordFilter{
		Difficulty: difficulty(models.DifficultyAdvanced),
		Search:     "chance",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM words ORDER BY id ASC LIMIT 2 OFFSET 4`).
		WillReturnRows(wordRows(sampleWord(5, "serendipity"), sampleWord(6, "ephemeral")))

	got, err := repo.List(context.Background(), models.WordFilter{}, 4, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, "ephemeral", got[1].Word)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	input := &models.Word{
		Word:            "serendipity",
		Definition:      "finding good things by chance",
		DifficultyLevel: models.DifficultyAdvanced,
		PartOfSpeech:    strPtr("noun"),
	}

	t.Run("inserted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO words .+ RETURNING id`).
			WithArgs("serendipity", "finding good things by chance", "Advanced",
				input.PartOfSpeech, input.Pronunciation, input.ExampleSentence, input.ImageURL,
				pgxmock.AnyArg()).
			WillReturnRows(wordRows(sampleWord(1, "serendipity")))

		got, err := repo.Create(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO words`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_words_word"})

		_, err := repo.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_Update(t *testing.T) {
	repo, mock := newMockRepo(t)
	def := "a fortunate discovery made by accident"

	updated := sampleWord(1, "serendipity")
	updated.Definition = def
	now := time.Now()
	updated.UpdatedAt = &now

	mock.ExpectQuery(`UPDATE words SET definition = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
		WithArgs(def, pgxmock.AnyArg(), int64(1)).
		WillReturnRows(wordRows(updated))

	got, err := repo.Update(context.Background(), 1, &models.UpdateWordRequest{Definition: &def})
	require.NoError(t, err)
	assert.Equal(t, def, got.Definition)
	assert.NotNil(t, got.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec(`DELETE FROM words WHERE id = \$1`).
				WithArgs(int64(9)).
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err := repo.Delete(context.Background(), 9)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_Ping(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.Error(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
