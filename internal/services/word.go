package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/Thanat-Wut/worddee-api/internal/models"
	"github.com/Thanat-Wut/worddee-api/internal/repository"
)

// ErrDictionaryDisabled is returned by GetDefinition when no dictionary is
// configured.
var ErrDictionaryDisabled = errors.New("dictionary lookup is disabled")

// WordService provides business logic for word operations
type WordService struct {
	repo       repository.WordRepository
	dictionary *DictionaryService
	log        *slog.Logger
}

// NewWordService creates a new word service. dictionary may be nil.
func NewWordService(repo repository.WordRepository, dictionary *DictionaryService, logger *slog.Logger) *WordService {
	return &WordService{
		repo:       repo,
		dictionary: dictionary,
		log:        logger.With("service", "word"),
	}
}

// GetRandomWord returns a uniformly random word, optionally restricted to a
// difficulty level.
func (s *WordService) GetRandomWord(ctx context.Context, difficulty *models.DifficultyLevel) (*models.Word, error) {
	if difficulty != nil && !difficulty.IsValid() {
		return nil, models.NewValidationError(models.FieldError{
			Field: "difficulty", Message: "must be one of Beginner, Intermediate, Advanced",
		})
	}

	word, err := s.repo.GetRandom(ctx, models.WordFilter{Difficulty: difficulty})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NoWordsFound(difficulty)
		}
		return nil, fmt.Errorf("get random word: %w", err)
	}
	return word, nil
}

// GetWords returns one page of words and the total number of matches.
func (s *WordService) GetWords(ctx context.Context, q models.WordQuery) ([]*models.Word, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	q.Filter.Search = models.NormalizeSearch(q.Filter.Search)

	total, err := s.repo.Count(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count words: %w", err)
	}
	if total == 0 {
		return []*models.Word{}, 0, nil
	}

	words, err := s.repo.List(ctx, q.Filter, q.Offset, q.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list words: %w", err)
	}
	return words, total, nil
}

// GetWordByID retrieves a word by ID
func (s *WordService) GetWordByID(ctx context.Context, id int64) (*models.Word, error) {
	word, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.WordNotFound(id)
		}
		return nil, fmt.Errorf("get word %d: %w", id, err)
	}
	return word, nil
}

// CreateWord normalizes and validates the request, then stores a new word.
func (s *WordService) CreateWord(ctx context.Context, req *models.CreateWordRequest) (*models.Word, error) {
	normalized := *req
	normalized.Word = models.NormalizeWord(req.Word)
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.findByWord(ctx, normalized.Word); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &models.ConflictError{Word: normalized.Word, ExistingID: existing.ID}
	}

	if s.dictionary != nil && (normalized.PartOfSpeech == nil || normalized.Pronunciation == nil) {
		s.enrich(ctx, &normalized)
	}

	created, err := s.repo.Create(ctx, &models.Word{
		Word:            normalized.Word,
		Definition:      normalized.Definition,
		DifficultyLevel: normalized.DifficultyLevel,
		PartOfSpeech:    normalized.PartOfSpeech,
		Pronunciation:   normalized.Pronunciation,
		ExampleSentence: normalized.ExampleSentence,
		ImageURL:        normalized.ImageURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.conflict(ctx, normalized.Word)
		}
		return nil, fmt.Errorf("create word: %w", err)
	}

	s.log.InfoContext(ctx, "word created",
		slog.Int64("id", created.ID),
		slog.String("word", created.Word),
	)
	return created, nil
}

// UpdateWord applies a partial update. An empty patch returns the current
// record without writing.
func (s *WordService) UpdateWord(ctx context.Context, id int64, patch *models.UpdateWordRequest) (*models.Word, error) {
	current, err := s.GetWordByID(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized := *patch
	if patch.Word != nil {
		w := models.NormalizeWord(*patch.Word)
		normalized.Word = &w
	}
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	if normalized.Word != nil {
		if *normalized.Word == current.Word {
			normalized.Word = nil
		} else if existing, err := s.findByWord(ctx, *normalized.Word); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != id {
			return nil, &models.ConflictError{Word: *normalized.Word, ExistingID: existing.ID}
		}
	}

	if normalized.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, &normalized)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, models.WordNotFound(id)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, s.conflict(ctx, *normalized.Word)
		}
		return nil, fmt.Errorf("update word %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "word updated", slog.Int64("id", id))
	return updated, nil
}

// DeleteWord permanently removes a word.
func (s *WordService) DeleteWord(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.WordNotFound(id)
		}
		return fmt.Errorf("delete word %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "word deleted", slog.Int64("id", id))
	return nil
}

// GetDefinition fetches dictionary data for a stored word
func (s *WordService) GetDefinition(ctx context.Context, id int64) (*models.DictionaryResponse, error) {
	if s.dictionary == nil {
		return nil, ErrDictionaryDisabled
	}

	word, err := s.GetWordByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.dictionary.Lookup(ctx, word.Word)
	if err != nil {
		return nil, err
	}
	resp.WordID = word.ID
	return resp, nil
}

// Ping checks that the store is reachable.
func (s *WordService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// enrich fills a missing part of speech and pronunciation from the
// dictionary. Lookup failures are logged and otherwise ignored.
func (s *WordService) enrich(ctx context.Context, req *models.CreateWordRequest) {
	entry, err := s.dictionary.Lookup(ctx, req.Word)
	if err != nil {
		s.log.WarnContext(ctx, "dictionary enrichment skipped",
			slog.String("word", req.Word),
			slog.Any("error", err),
		)
		return
	}

	if req.PartOfSpeech == nil && len(entry.Meanings) > 0 {
		pos := entry.Meanings[0].PartOfSpeech
		if pos != "" && utf8.RuneCountInString(pos) <= models.MaxPartOfSpeechLength {
			req.PartOfSpeech = lo.ToPtr(pos)
		}
	}
	if req.Pronunciation == nil && entry.Phonetic != "" &&
		utf8.RuneCountInString(entry.Phonetic) <= models.MaxPronunciationLen {
		req.Pronunciation = lo.ToPtr(entry.Phonetic)
	}
}

// findByWord returns nil, nil when the word does not exist.
func (s *WordService) findByWord(ctx context.Context, word string) (*models.Word, error) {
	existing, err := s.repo.GetByWord(ctx, word)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("check word %q: %w", word, err)
	}
	return existing, nil
}

// conflict builds a ConflictError after the store rejected a write; the id of
// the winning row is looked up on a best-effort basis.
func (s *WordService) conflict(ctx context.Context, word string) error {
	cerr := &models.ConflictError{Word: word}
	if existing, err := s.repo.GetByWord(ctx, word); err == nil {
		cerr.ExistingID = existing.ID
	}
	return cerr
}
