package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/Thanat-Wut/worddee-api/internal/models"
)

// Format is a bulk transfer file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	exportBatchSize = 500
	xlsxSheet       = "Sheet1"
)

var (
	// ErrUnsupportedFormat is returned for unknown transfer formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidFile is returned when an import file cannot be parsed.
	ErrInvalidFile = errors.New("invalid import file")
)

// FormatFromFilename infers the transfer format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

var transferColumns = []string{
	"word", "definition", "difficulty_level",
	"part_of_speech", "pronunciation", "example_sentence", "image_url",
}

var requiredColumns = []string{"word", "definition", "difficulty_level"}

// ImportResult contains the results of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import reads words in the given format and creates each one through
// CreateWord. Rows that fail validation or already exist are skipped and
// reported; only unreadable input or a missing column fails the import.
func (s *WordService) Import(ctx context.Context, format Format, r io.Reader) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}

	// Map column names to indices
	colIndex := make(map[string]int)
	for i, col := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column: %s", ErrInvalidFile, col)
		}
	}

	result := &ImportResult{}
	for i, record := range rows[1:] {
		lineNum := i + 2 // header is line 1
		if lo.EveryBy(record, func(v string) bool { return strings.TrimSpace(v) == "" }) {
			continue
		}

		req := rowToRequest(record, colIndex)
		if _, err := s.CreateWord(ctx, req); err != nil {
			if !isClientError(err) {
				return result, fmt.Errorf("line %d: %w", lineNum, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			result.Skipped++
			continue
		}
		result.Imported++
	}

	s.log.InfoContext(ctx, "words imported",
		slog.String("format", string(format)),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Export writes every word, ordered by id, in the given format.
func (s *WordService) Export(ctx context.Context, format Format, w io.Writer) error {
	switch format {
	case FormatCSV:
		return s.exportCSV(ctx, w)
	case FormatXLSX:
		return s.exportXLSX(ctx, w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (s *WordService) exportCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(transferColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := s.eachWord(ctx, func(word *models.Word) error {
		if err := writer.Write(wordToRecord(word)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func (s *WordService) exportXLSX(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	row := 1
	writeRow := func(values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		cells := lo.Map(values, func(v string, _ int) any { return v })
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
		return nil
	}

	if err := writeRow(transferColumns); err != nil {
		return err
	}
	if err := s.eachWord(ctx, func(word *models.Word) error {
		return writeRow(wordToRecord(word))
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// eachWord pages through the store in id order.
func (s *WordService) eachWord(ctx context.Context, fn func(*models.Word) error) error {
	for offset := 0; ; offset += exportBatchSize {
		batch, err := s.repo.List(ctx, models.WordFilter{}, offset, exportBatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch words: %w", err)
		}
		for _, word := range batch {
			if err := fn(word); err != nil {
				return err
			}
		}
		if len(batch) < exportBatchSize {
			return nil
		}
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func rowToRequest(record []string, colIndex map[string]int) *models.CreateWordRequest {
	get := func(col string) string {
		if idx, ok := colIndex[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
	optional := func(col string) *string {
		if v := get(col); v != "" {
			return &v
		}
		return nil
	}

	return &models.CreateWordRequest{
		Word:            get("word"),
		Definition:      get("definition"),
		DifficultyLevel: models.DifficultyLevel(get("difficulty_level")),
		PartOfSpeech:    optional("part_of_speech"),
		Pronunciation:   optional("pronunciation"),
		ExampleSentence: optional("example_sentence"),
		ImageURL:        optional("image_url"),
	}
}

func wordToRecord(w *models.Word) []string {
	return []string{
		w.Word,
		w.Definition,
		string(w.DifficultyLevel),
		lo.FromPtr(w.PartOfSpeech),
		lo.FromPtr(w.Pronunciation),
		lo.FromPtr(w.ExampleSentence),
		lo.FromPtr(w.ImageURL),
	}
}

func isClientError(err error) bool {
	return errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrConflict)
}
