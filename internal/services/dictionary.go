package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

const (
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	defaultTimeout       = 10 * time.Second
)

// ErrWordNotFound is returned when the word is not found in the dictionary
var ErrWordNotFound = errors.New("word not found in dictionary")

// DictionaryService provides dictionary lookup functionality
type DictionaryService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewDictionaryService creates a dictionary client. Empty baseURL and zero
// timeout fall back to the public dictionaryapi.dev endpoint and 10s.
func NewDictionaryService(baseURL, apiKey string, timeout time.Duration) *DictionaryService {
	if baseURL == "" {
		baseURL = DefaultDictionaryURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DictionaryService{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// NewDictionaryServiceWithClient creates a new dictionary service with a custom HTTP client
func NewDictionaryServiceWithClient(client *http.Client, baseURL string) *DictionaryService {
	return &DictionaryService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Lookup fetches the definition of a word from the dictionary API
func (s *DictionaryService) Lookup(ctx context.Context, word string) (*models.DictionaryResponse, error) {
	endpoint := s.baseURL + "/" + url.PathEscape(word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrWordNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary API returned status %d", resp.StatusCode)
	}

	var entries []models.DictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrWordNotFound
	}

	return transformResponse(entries), nil
}

// transformResponse converts the API response to our response format
func transformResponse(entries []models.DictionaryEntry) *models.DictionaryResponse {
	entry := entries[0]

	response := &models.DictionaryResponse{
		Word:     entry.Word,
		Phonetic: entry.Phonetic,
		Meanings: entry.Meanings,
	}

	// First audio wins; phonetic text backfills an empty top-level phonetic.
	for _, phonetic := range entry.Phonetics {
		if phonetic.Audio != "" {
			response.AudioURL = phonetic.Audio
			break
		}
		if response.Phonetic == "" && phonetic.Text != "" {
			response.Phonetic = phonetic.Text
		}
	}

	sources := lo.FilterMap(entries, func(e models.DictionaryEntry, _ int) (string, bool) {
		return e.SourceURL, e.SourceURL != ""
	})
	response.SourceURLs = lo.Uniq(sources)

	return response
}
