package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/classifier"
	"github.com/BerylCAtieno/document-metadata-api/internal/handlers"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/router"
	"github.com/BerylCAtieno/document-metadata-api/internal/services"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

type stubDocuments struct {
	services.DocumentService

	received []models.FileInput
	docs     []models.DocumentMetadata
	content  []byte
	err      error
}

func (s *stubDocuments) SupportedTypes() []classifier.ContentTypeMapping {
	return classifier.ContentTypes()
}

func (s *stubDocuments) InspectDocuments(ctx context.Context, files []models.FileInput) (*models.BatchResult, error) {
	s.received = files
	return &models.BatchResult{Documents: s.docs, Rejected: []models.RejectedFile{}}, s.err
}

func (s *stubDocuments) UploadDocuments(ctx context.Context, files []models.FileInput) (*models.UploadResponse, error) {
	s.received = files
	if s.err != nil {
		return nil, s.err
	}
	return &models.UploadResponse{Documents: s.docs, Message: "ok"}, nil
}

func (s *stubDocuments) ListDocuments(ctx context.Context) ([]models.DocumentMetadata, error) {
	return s.docs, s.err
}

func (s *stubDocuments) GetDocument(ctx context.Context, id string) (*models.DocumentMetadata, error) {
	for i := range s.docs {
		if s.docs[i].ID == id {
			return &s.docs[i], nil
		}
	}
	return nil, utils.NewNotFoundError("Document not found")
}

func (s *stubDocuments) GetDocumentContent(ctx context.Context, id string) (*models.DocumentMetadata, []byte, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, s.content, nil
}

func (s *stubDocuments) DeleteDocuments(ctx context.Context, ids []string) (*models.DeleteResponse, error) {
	if len(ids) == 0 {
		return nil, utils.NewBadRequestError("At least one document ID is required")
	}
	return &models.DeleteResponse{Deleted: len(ids)}, nil
}

func (s *stubDocuments) PurgeDocuments(ctx context.Context) error {
	s.docs = nil
	return s.err
}

type stubChat struct {
	services.ChatService
	queries []string
}

func (s *stubChat) Query(ctx context.Context, query string) (*models.QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, utils.NewBadRequestError("Query must not be empty")
	}
	s.queries = append(s.queries, query)
	return &models.QueryResponse{Response: "answer", ResponseTimeMS: 12}, nil
}

func (s *stubChat) History(ctx context.Context) ([]models.ChatMessage, error) {
	return []models.ChatMessage{{ID: 1, Text: "hi", Sender: models.SenderUser}}, nil
}

func newTestServer(docs *stubDocuments, chat *stubChat) http.Handler {
	return router.NewRouter(docs, chat, router.Options{
		Limits: handlers.Limits{MaxFileSize: 1024, MaxUploadSize: 4096},
	}, utils.NewLogger("error"))
}

type part struct {
	name        string
	contentType string
	body        string
}

func multipartBody(t *testing.T, parts []part, lastModified ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		fw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		fw.Write([]byte(p.body))
	}
	for _, v := range lastModified {
		w.WriteField("last_modified", v)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubDocuments{}, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestInspectDocuments_ReadsFiles(t *testing.T) {
	docs := &stubDocuments{docs: []models.DocumentMetadata{}}
	srv := newTestServer(docs, &stubChat{})

	body, ct := multipartBody(t, []part{
		{name: "notes.txt", contentType: "text/plain", body: "a\nb"},
		{name: "deck.pptx", contentType: "application/octet-stream", body: "PK"},
		{name: "photo.png", contentType: "image/png", body: "png"},
	}, "1700000000000")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/inspect", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(docs.received) != 3 {
		t.Fatalf("service received %d files, want 3", len(docs.received))
	}

	first := docs.received[0]
	if first.Name != "notes.txt" || string(first.Data) != "a\nb" || first.ContentType != "text/plain" {
		t.Errorf("first file = %+v", first)
	}
	if !first.ModifiedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("first file modified at %v", first.ModifiedAt)
	}
	if got := docs.received[1].ContentType; got != "application/vnd.openxmlformats-officedocument.presentationml.presentation" {
		t.Errorf("octet-stream pptx content type = %s", got)
	}
	if got := docs.received[2].ContentType; got != "image/png" {
		t.Errorf("declared content type replaced: %s", got)
	}
	if docs.received[1].ModifiedAt.IsZero() {
		t.Error("file without last_modified has zero time")
	}
}

func TestUploadDocuments_FileTooLarge(t *testing.T) {
	docs := &stubDocuments{}
	srv := newTestServer(docs, &stubChat{})

	body, ct := multipartBody(t, []part{
		{name: "big.txt", contentType: "text/plain", body: strings.Repeat("x", 2048)},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if docs.received != nil {
		t.Error("oversized file reached the service")
	}
}

func TestUploadDocuments_NoFiles(t *testing.T) {
	srv := newTestServer(&stubDocuments{}, &stubChat{})

	body, ct := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDocuments_Created(t *testing.T) {
	docs := &stubDocuments{docs: []models.DocumentMetadata{{ID: "a", DisplayName: "a.txt"}}}
	srv := newTestServer(docs, &stubChat{})

	body, ct := multipartBody(t, []part{{name: "a.txt", contentType: "text/plain", body: "a"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestGetDocument(t *testing.T) {
	docs := &stubDocuments{docs: []models.DocumentMetadata{{ID: "abc", DisplayName: "a.pdf", ContentType: "application/pdf"}}}
	srv := newTestServer(docs, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var doc models.DocumentMetadata
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if doc.DisplayName != "a.pdf" {
		t.Errorf("DisplayName = %s", doc.DisplayName)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing document status = %d, want 404", rec.Code)
	}
}

func TestFixedPathsBeforeID(t *testing.T) {
	docs := &stubDocuments{docs: []models.DocumentMetadata{{ID: "a"}}}
	srv := newTestServer(docs, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/types", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "text/csv") {
		t.Errorf("types = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/documents/all", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("purge status = %d", rec.Code)
	}
	if docs.docs != nil {
		t.Error("purge did not reach the service")
	}
}

func TestGetDocumentContent(t *testing.T) {
	docs := &stubDocuments{
		docs:    []models.DocumentMetadata{{ID: "abc", DisplayName: "notes.txt", ContentType: "text/plain"}},
		content: []byte("hello"),
	}
	srv := newTestServer(docs, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc/content", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("content = %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "notes.txt") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestDeleteDocuments(t *testing.T) {
	srv := newTestServer(&stubDocuments{}, &stubChat{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents", strings.NewReader(`{"ids":["a","b"]}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deleted":2`) {
		t.Errorf("delete = %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/documents", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", rec.Code)
	}
}

func TestErrorBody(t *testing.T) {
	docs := &stubDocuments{err: utils.NewBadGatewayError("Failed to list", context.DeadlineExceeded)}
	srv := newTestServer(docs, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] != "Failed to list" {
		t.Errorf("error body = %v", body)
	}
}

func TestChatQuery(t *testing.T) {
	chat := &stubChat{}
	srv := newTestServer(&stubDocuments{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/query", strings.NewReader(`{"query":"what changed?"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.QueryResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Response != "answer" || resp.ResponseTimeMS != 12 {
		t.Errorf("response = %+v", resp)
	}
	if len(chat.queries) != 1 || chat.queries[0] != "what changed?" {
		t.Errorf("queries = %v", chat.queries)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat/query", strings.NewReader(`{"query":""}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", rec.Code)
	}
}

func TestChatHistory(t *testing.T) {
	srv := newTestServer(&stubDocuments{}, &stubChat{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sender":"user"`) {
		t.Errorf("history = %d %s", rec.Code, rec.Body.String())
	}
}
