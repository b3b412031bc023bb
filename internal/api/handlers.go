package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Thanat-Wut/worddee-api/internal/models"
	"github.com/Thanat-Wut/worddee-api/internal/services"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

// ServiceInfo identifies the running service on / and /health.
type ServiceInfo struct {
	Name        string
	Version     string
	Description string
}

// Handler contains all HTTP handlers
type Handler struct {
	words *services.WordService
	info  ServiceInfo
	log   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(words *services.WordService, info ServiceInfo, logger *slog.Logger) *Handler {
	return &Handler{
		words: words,
		info:  info,
		log:   logger.With("handler", "words"),
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string              `json:"detail"`
	Errors []models.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeServiceError maps a service error to its status code. Unclassified
// errors are logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "Validation error", Errors: verr.Errors})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrDictionaryDisabled):
		writeError(w, http.StatusNotFound, "Dictionary lookup is disabled")
	case errors.Is(err, services.ErrWordNotFound):
		writeError(w, http.StatusNotFound, "Definition not found in dictionary")
	case errors.Is(err, services.ErrUnsupportedFormat), errors.Is(err, services.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid word ID")
		return 0, false
	}
	return id, true
}

// parseDifficulty reads the optional difficulty query parameter.
func parseDifficulty(r *http.Request) (*models.DifficultyLevel, error) {
	raw := r.URL.Query().Get("difficulty")
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDifficultyLevel(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// queryInt reads a positive integer query parameter, falling back to def
// when absent.
func queryInt(r *http.Request, name string, def, upper int, errs []models.FieldError) (int, []models.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, errs
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return def, append(errs, models.FieldError{Field: name, Message: "must be an integer"})
	case n < 1:
		return def, append(errs, models.FieldError{Field: name, Message: "must be greater than or equal to 1"})
	case upper > 0 && n > upper:
		return def, append(errs, models.FieldError{Field: name, Message: fmt.Sprintf("must be less than or equal to %d", upper)})
	}
	return n, errs
}

// ServiceInfoHandler handles GET /
func (h *Handler) ServiceInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service":     h.info.Name,
		"version":     h.info.Version,
		"status":      "running",
		"description": h.info.Description,
	})
}

// GetRandomWord handles GET /api/random
func (h *Handler) GetRandomWord(w http.ResponseWriter, r *http.Request) {
	difficulty, err := parseDifficulty(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	word, err := h.words.GetRandomWord(r.Context(), difficulty)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, word)
}

// ListWords handles GET /api/words
func (h *Handler) ListWords(w http.ResponseWriter, r *http.Request) {
	var errs []models.FieldError
	page, errs := queryInt(r, "page", 1, 0, errs)
	pageSize, errs := queryInt(r, "page_size", models.DefaultPageSize, models.MaxPageSize, errs)
	difficulty, err := parseDifficulty(r)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			errs = append(errs, verr.Errors...)
		}
	}
	if len(errs) > 0 {
		h.writeServiceError(w, r, models.NewValidationError(errs...))
		return
	}

	words, total, err := h.words.GetWords(r.Context(), models.WordQuery{
		Filter: models.WordFilter{Difficulty: difficulty, Search: r.URL.Query().Get("search")},
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.WordList{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Words:    words,
	})
}

// GetWord handles GET /api/words/{id}
func (h *Handler) GetWord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	word, err := h.words.GetWordByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, word)
}

// GetWordDefinition handles GET /api/words/{id}/definition
func (h *Handler) GetWordDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	definition, err := h.words.GetDefinition(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, definition)
}

// CreateWord handles POST /api/admin/words
func (h *Handler) CreateWord(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.words.CreateWord(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, word)
}

// UpdateWord handles PUT /api/admin/words/{id}
func (h *Handler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req models.UpdateWordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.words.UpdateWord(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/admin/words/{id}
func (h *Handler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.words.DeleteWord(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportWords handles POST /api/admin/words/import
func (h *Handler) ImportWords(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	format, err := services.FormatFromFilename(header.Filename)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.words.Import(r.Context(), format, file)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExportWords handles GET /api/words/export
func (h *Handler) ExportWords(w http.ResponseWriter, r *http.Request) {
	format := services.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = services.FormatCSV
	}

	var contentType string
	switch format {
	case services.FormatCSV:
		contentType = "text/csv"
	case services.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported format %q", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=words.%s", format))

	if err := h.words.Export(r.Context(), format, w); err != nil {
		// Headers and part of the body may already be sent.
		h.log.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.Any("error", err),
		)
	}
}
