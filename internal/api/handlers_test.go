package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Thanat-Wut/worddee-api/internal/config"
	"github.com/Thanat-Wut/worddee-api/internal/models"
	"github.com/Thanat-Wut/worddee-api/internal/repository"
	"github.com/Thanat-Wut/worddee-api/internal/repository/testhelper"
	"github.com/Thanat-Wut/worddee-api/internal/services"
)

const testAPIKey = "test-admin-key-0123456789"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestHandler(t *testing.T) (*chi.Mux, *repository.SQLiteRepository) {
	t.Helper()

	logger := testLogger()
	repo := testhelper.NewSQLiteRepository(t)
	wordSvc := services.NewWordService(repo, nil, logger)
	handler := NewHandler(wordSvc, ServiceInfo{Name: "Worddee API", Version: "1.0.0", Description: "test"}, logger)
	router := NewRouter(handler, RouterOptions{
		AdminAPIKey: testAPIKey,
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders: []string{"Content-Type", APIKeyHeader},
		},
		Logger: logger,
	})
	return router, repo
}

func doRequest(router http.Handler, method, path, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(APIKeyHeader, testAPIKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createWord(t *testing.T, router http.Handler, body string) models.Word {
	t.Helper()
	rec := doRequest(router, http.MethodPost, "/api/admin/words", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var w models.Word
	if err := json.NewDecoder(rec.Body).Decode(&w); err != nil {
		t.Fatalf("decode created word: %v", err)
	}
	return w
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestHandler_CreateWord(t *testing.T) {
	router, _ := setupTestHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid word",
			body:       `{"word":"  Ephemeral ","definition":"lasting a very short time","difficulty_level":"Advanced"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate word",
			body:       `{"word":"EPHEMERAL","definition":"lasting a very short time","difficulty_level":"Advanced"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "missing word",
			body:       `{"definition":"lasting a very short time","difficulty_level":"Advanced"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown difficulty",
			body:       `{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Expert"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid JSON",
			body:       `{invalid}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/api/admin/words", tt.body, true)
			if rec.Code != tt.wantStatus {
				t.Errorf("CreateWord() status = %v, want %v (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandler_CreateWordValidationBody(t *testing.T) {
	router, _ := setupTestHandler(t)

	rec := doRequest(router, http.MethodPost, "/api/admin/words",
		`{"word":"cat","definition":"short","difficulty_level":"Beginner"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "definition" {
		t.Errorf("errors = %+v, want a single definition error", resp.Errors)
	}
}

func TestHandler_AdminAuth(t *testing.T) {
	router, _ := setupTestHandler(t)
	body := `{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Beginner"}`

	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "missing key",
			wantStatus: http.StatusUnauthorized,
			wantDetail: "API key is required. Please provide X-API-Key header.",
		},
		{
			name:       "wrong key",
			key:        "not-the-admin-key",
			wantStatus: http.StatusForbidden,
			wantDetail: "Invalid API key. Access denied.",
		},
		{
			name:       "valid key",
			key:        testAPIKey,
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/words", strings.NewReader(body))
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantDetail == "" {
				return
			}
			if got := decodeError(t, rec).Detail; got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "ApiKey" {
				t.Errorf("WWW-Authenticate = %q, want ApiKey", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestHandler_GetWord(t *testing.T) {
	router, _ := setupTestHandler(t)

	createWord(t, router, `{"word":"ephemeral","definition":"lasting a very short time","difficulty_level":"Advanced"}`)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "existing word",
			id:         "1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-existent word",
			id:         "9999",
			wantStatus: http.StatusNotFound,
			wantDetail: "Word with ID 9999 not found",
		},
		{
			name:       "invalid ID",
			id:         "abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, "/api/words/"+tt.id, "", false)

			if rec.Code != tt.wantStatus {
				t.Errorf("GetWord() status = %v, want %v", rec.Code, tt.wantStatus)
			}
			if tt.wantDetail != "" {
				if got := decodeError(t, rec).Detail; got != tt.wantDetail {
					t.Errorf("GetWord() detail = %q, want %q", got, tt.wantDetail)
				}
			}
		})
	}
}

func TestHandler_ListWords(t *testing.T) {
	router, _ := setupTestHandler(t)

	for _, body := range []string{
		`{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Beginner"}`,
		`{"word":"dog","definition":"a loyal domesticated canine","difficulty_level":"Beginner"}`,
		`{"word":"serendipity","definition":"finding good things by chance","difficulty_level":"Advanced"}`,
	} {
		createWord(t, router, body)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  int64
		wantWords  []string
		wantPage   int
		wantSize   int
	}{
		{
			name:       "defaults",
			query:      "",
			wantStatus: http.StatusOK,
			wantTotal:  3,
			wantWords:  []string{"cat", "dog", "serendipity"},
			wantPage:   1,
			wantSize:   10,
		},
		{
			name:       "second page",
			query:      "?page=2&page_size=2",
			wantStatus: http.StatusOK,
			wantTotal:  3,
			wantWords:  []string{"serendipity"},
			wantPage:   2,
			wantSize:   2,
		},
		{
			name:       "difficulty and search",
			query:      "?difficulty=Beginner&search=LOYAL",
			wantStatus: http.StatusOK,
			wantTotal:  1,
			wantWords:  []string{"dog"},
			wantPage:   1,
			wantSize:   10,
		},
		{
			name:       "past the end",
			query:      "?page=5",
			wantStatus: http.StatusOK,
			wantTotal:  3,
			wantWords:  []string{},
			wantPage:   5,
			wantSize:   10,
		},
		{name: "page zero", query: "?page=0", wantStatus: http.StatusUnprocessableEntity},
		{name: "page size too large", query: "?page_size=101", wantStatus: http.StatusUnprocessableEntity},
		{name: "non-numeric page", query: "?page=x", wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown difficulty", query: "?difficulty=beginner", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, "/api/words"+tt.query, "", false)
			if rec.Code != tt.wantStatus {
				t.Fatalf("ListWords() status = %v, want %v", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.WordList
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Total != tt.wantTotal || resp.Page != tt.wantPage || resp.PageSize != tt.wantSize {
				t.Errorf("ListWords() envelope = total %d page %d size %d", resp.Total, resp.Page, resp.PageSize)
			}
			if resp.Words == nil {
				t.Error("ListWords() words = null, want []")
			}
			if len(resp.Words) != len(tt.wantWords) {
				t.Fatalf("ListWords() count = %d, want %d", len(resp.Words), len(tt.wantWords))
			}
			for i, w := range resp.Words {
				if w.Word != tt.wantWords[i] {
					t.Errorf("ListWords()[%d] = %q, want %q", i, w.Word, tt.wantWords[i])
				}
			}
		})
	}
}

func TestHandler_UpdateWord(t *testing.T) {
	router, _ := setupTestHandler(t)
	created := createWord(t, router, `{"word":"ephemeral","definition":"lasting a very short time","difficulty_level":"Advanced"}`)
	createWord(t, router, `{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Beginner"}`)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{name: "partial update", id: "1", body: `{"difficulty_level":"Intermediate"}`, wantStatus: http.StatusOK},
		{name: "empty patch", id: "1", body: `{}`, wantStatus: http.StatusOK},
		{name: "rename conflict", id: "1", body: `{"word":"Cat"}`, wantStatus: http.StatusConflict},
		{name: "invalid field", id: "1", body: `{"definition":"short"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing word", id: "99", body: `{"definition":"long enough definition"}`, wantStatus: http.StatusNotFound},
		{name: "invalid ID", id: "x", body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPut, "/api/admin/words/"+tt.id, tt.body, true)
			if rec.Code != tt.wantStatus {
				t.Errorf("UpdateWord() status = %v, want %v (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	rec := doRequest(router, http.MethodGet, "/api/words/1", "", false)
	var got models.Word
	json.NewDecoder(rec.Body).Decode(&got)
	if got.DifficultyLevel != models.DifficultyIntermediate || got.Definition != created.Definition {
		t.Errorf("after updates word = %+v", got)
	}
}

func TestHandler_DeleteWord(t *testing.T) {
	router, _ := setupTestHandler(t)
	createWord(t, router, `{"word":"ephemeral","definition":"lasting a very short time","difficulty_level":"Advanced"}`)

	rec := doRequest(router, http.MethodDelete, "/api/admin/words/1", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DeleteWord() status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("DeleteWord() body = %q, want empty", rec.Body.String())
	}

	if rec := doRequest(router, http.MethodGet, "/api/words/1", "", false); rec.Code != http.StatusNotFound {
		t.Errorf("GetWord() after delete status = %d, want 404", rec.Code)
	}
	if rec := doRequest(router, http.MethodDelete, "/api/admin/words/1", "", true); rec.Code != http.StatusNotFound {
		t.Errorf("DeleteWord() twice status = %d, want 404", rec.Code)
	}
}

func TestHandler_GetRandomWord(t *testing.T) {
	router, _ := setupTestHandler(t)

	rec := doRequest(router, http.MethodGet, "/api/random", "", false)
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Detail != "No words found" {
		t.Fatalf("empty random status = %d", rec.Code)
	}

	createWord(t, router, `{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Beginner"}`)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "any level", query: "", wantStatus: http.StatusOK},
		{name: "matching level", query: "?difficulty=Beginner", wantStatus: http.StatusOK},
		{name: "empty level", query: "?difficulty=Advanced", wantStatus: http.StatusNotFound},
		{name: "invalid level", query: "?difficulty=Hard", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, "/api/random"+tt.query, "", false)
			if rec.Code != tt.wantStatus {
				t.Errorf("GetRandomWord() status = %v, want %v", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandler_GetWordDefinitionDisabled(t *testing.T) {
	router, _ := setupTestHandler(t)
	createWord(t, router, `{"word":"cat","definition":"a small domesticated feline","difficulty_level":"Beginner"}`)

	rec := doRequest(router, http.MethodGet, "/api/words/1/definition", "", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetWordDefinition() status = %d, want 404", rec.Code)
	}
}

func TestHandler_ImportExport(t *testing.T) {
	router, _ := setupTestHandler(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "words.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("word,definition,difficulty_level\n" +
		"Cat,a small domesticated feline,Beginner\n" +
		"cat,the same word again in lowercase,Beginner\n" +
		"serendipity,finding good things by chance,Advanced\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/words/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ImportWords() status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result services.ImportResult
	json.NewDecoder(rec.Body).Decode(&result)
	if result.Imported != 2 || result.Skipped != 1 {
		t.Errorf("ImportWords() result = %+v", result)
	}

	rec = doRequest(router, http.MethodGet, "/api/words/export?format=csv", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("ExportWords() status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("ExportWords() content type = %q", ct)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 3 || records[1][0] != "cat" {
		t.Errorf("ExportWords() records = %v", records)
	}

	if rec := doRequest(router, http.MethodGet, "/api/words/export?format=pdf", "", false); rec.Code != http.StatusBadRequest {
		t.Errorf("ExportWords(pdf) status = %d, want 400", rec.Code)
	}
}

func TestHandler_ServiceInfoAndHealth(t *testing.T) {
	router, repo := setupTestHandler(t)

	rec := doRequest(router, http.MethodGet, "/", "", false)
	var info map[string]string
	json.NewDecoder(rec.Body).Decode(&info)
	if rec.Code != http.StatusOK || info["status"] != "running" || info["service"] != "Worddee API" {
		t.Errorf("ServiceInfo() = %d %v", rec.Code, info)
	}

	rec = doRequest(router, http.MethodGet, "/health", "", false)
	var health HealthResponse
	json.NewDecoder(rec.Body).Decode(&health)
	if rec.Code != http.StatusOK || health.Status != "healthy" || health.Service != "Worddee API" {
		t.Errorf("HealthCheck() = %d %+v", rec.Code, health)
	}
	if health.Components["database"].Status != "healthy" {
		t.Errorf("HealthCheck() database = %+v", health.Components["database"])
	}

	repo.Close()
	rec = doRequest(router, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("HealthCheck() with closed store status = %d, want 503", rec.Code)
	}
}

func TestHandler_Serendipity(t *testing.T) {
	router, _ := setupTestHandler(t)

	created := createWord(t, router,
		`{"word":"Serendipity","definition":"finding good things by chance","difficulty_level":"Advanced"}`)
	if created.ID != 1 || created.Word != "serendipity" {
		t.Fatalf("created = %+v", created)
	}

	rec := doRequest(router, http.MethodGet, "/api/words?search=CHANCE", "", false)
	var list models.WordList
	json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 1 || len(list.Words) != 1 || list.Words[0].ID != 1 {
		t.Errorf("search result = %+v", list)
	}

	rec = doRequest(router, http.MethodGet, "/api/random?difficulty=Advanced", "", false)
	var random models.Word
	json.NewDecoder(rec.Body).Decode(&random)
	if rec.Code != http.StatusOK || random.ID != 1 {
		t.Errorf("random = %d %+v", rec.Code, random)
	}

	rec = doRequest(router, http.MethodPost, "/api/admin/words",
		`{"word":"serendipity","definition":"finding good things by chance","difficulty_level":"Advanced"}`, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if got := decodeError(t, rec).Detail; got != "Word 'serendipity' already exists with ID 1" {
		t.Errorf("duplicate detail = %q", got)
	}
}
