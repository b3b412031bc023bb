package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxWordLength         = 100
	MinDefinitionLength   = 10
	MaxPartOfSpeechLength = 50
	MaxPronunciationLen   = 100

	MaxPageSize     = 100
	DefaultPageSize = 10
)

// Word represents a vocabulary word entity
type Word struct {
	ID              int64           `json:"id" db:"id"`
	Word            string          `json:"word" db:"word"`
	Definition      string          `json:"definition" db:"definition"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level" db:"difficulty_level"`
	PartOfSpeech    *string         `json:"part_of_speech" db:"part_of_speech"`
	Pronunciation   *string         `json:"pronunciation" db:"pronunciation"`
	ExampleSentence *string         `json:"example_sentence" db:"example_sentence"`
	ImageURL        *string         `json:"image_url" db:"image_url"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateWordRequest represents the request body for creating a word
type CreateWordRequest struct {
	Word            string          `json:"word"`
	Definition      string          `json:"definition"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	PartOfSpeech    *string         `json:"part_of_speech,omitempty"`
	Pronunciation   *string         `json:"pronunciation,omitempty"`
	ExampleSentence *string         `json:"example_sentence,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
}

// Validate checks field constraints. The word is expected to be normalized
// already.
func (r *CreateWordRequest) Validate() error {
	var errs []FieldError
	errs = appendWordErrors(errs, r.Word)
	errs = appendDefinitionErrors(errs, r.Definition)
	if !r.DifficultyLevel.IsValid() {
		errs = append(errs, invalidDifficulty())
	}
	errs = appendOptionalErrors(errs, r.PartOfSpeech, r.Pronunciation)
	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	return nil
}

// UpdateWordRequest is a partial update. Nil fields are left untouched.
type UpdateWordRequest struct {
	Word            *string          `json:"word,omitempty"`
	Definition      *string          `json:"definition,omitempty"`
	DifficultyLevel *DifficultyLevel `json:"difficulty_level,omitempty"`
	PartOfSpeech    *string          `json:"part_of_speech,omitempty"`
	Pronunciation   *string          `json:"pronunciation,omitempty"`
	ExampleSentence *string          `json:"example_sentence,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (r *UpdateWordRequest) IsEmpty() bool {
	return r.Word == nil && r.Definition == nil && r.DifficultyLevel == nil &&
		r.PartOfSpeech == nil && r.Pronunciation == nil &&
		r.ExampleSentence == nil && r.ImageURL == nil
}

// Validate checks the fields present in the patch.
func (r *UpdateWordRequest) Validate() error {
	var errs []FieldError
	if r.Word != nil {
		errs = appendWordErrors(errs, *r.Word)
	}
	if r.Definition != nil {
		errs = appendDefinitionErrors(errs, *r.Definition)
	}
	if r.DifficultyLevel != nil && !r.DifficultyLevel.IsValid() {
		errs = append(errs, invalidDifficulty())
	}
	errs = appendOptionalErrors(errs, r.PartOfSpeech, r.Pronunciation)
	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	return nil
}

// WordFilter represents query parameters for filtering words
type WordFilter struct {
	Difficulty *DifficultyLevel
	// Search is matched case-insensitively against word and definition.
	Search string
}

// WordQuery is a filtered page request.
type WordQuery struct {
	Filter WordFilter
	Offset int
	Limit  int
}

// Validate checks paging bounds and the difficulty filter.
func (q WordQuery) Validate() error {
	var errs []FieldError
	if q.Offset < 0 {
		errs = append(errs, FieldError{Field: "offset", Message: "must be greater than or equal to 0"})
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		errs = append(errs, FieldError{Field: "limit", Message: "must be between 1 and 100"})
	}
	if q.Filter.Difficulty != nil && !q.Filter.Difficulty.IsValid() {
		errs = append(errs, invalidDifficulty())
	}
	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	return nil
}

// WordList is the paginated list envelope returned by the API.
type WordList struct {
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Words    []*Word `json:"words"`
}

// NormalizeWord lowercases and trims a word.
func NormalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSearch lowercases a free-text search term. Surrounding spaces are
// part of the term; only "" means no search filter.
func NormalizeSearch(s string) string {
	return strings.ToLower(s)
}

func appendWordErrors(errs []FieldError, word string) []FieldError {
	n := utf8.RuneCountInString(word)
	switch {
	case n == 0:
		errs = append(errs, FieldError{Field: "word", Message: "is required"})
	case n > MaxWordLength:
		errs = append(errs, FieldError{Field: "word", Message: "must be at most 100 characters"})
	}
	return errs
}

func appendDefinitionErrors(errs []FieldError, definition string) []FieldError {
	if utf8.RuneCountInString(definition) < MinDefinitionLength {
		errs = append(errs, FieldError{Field: "definition", Message: "must be at least 10 characters"})
	}
	return errs
}

func appendOptionalErrors(errs []FieldError, partOfSpeech, pronunciation *string) []FieldError {
	if partOfSpeech != nil && utf8.RuneCountInString(*partOfSpeech) > MaxPartOfSpeechLength {
		errs = append(errs, FieldError{Field: "part_of_speech", Message: "must be at most 50 characters"})
	}
	if pronunciation != nil && utf8.RuneCountInString(*pronunciation) > MaxPronunciationLen {
		errs = append(errs, FieldError{Field: "pronunciation", Message: "must be at most 100 characters"})
	}
	return errs
}

func invalidDifficulty() FieldError {
	return FieldError{Field: "difficulty_level", Message: "must be one of Beginner, Intermediate, Advanced"}
}
