// Package backend talks to the RAG backend that indexes documents and answers
// chat queries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

// ErrNotConfigured is returned by every call when no backend URL is set.
var ErrNotConfigured = errors.New("backend URL not configured")

type Client interface {
	Query(ctx context.Context, query string) (string, error)
	AddFiles(ctx context.Context, files []models.FileInput) (*models.IndexResult, error)
	ListFiles(ctx context.Context) ([]models.IndexedFile, error)
	DeleteEntries(ctx context.Context, ids []string) error
	ClearCollection(ctx context.Context) error
}

type httpClient struct {
	baseURL string
	logger  *utils.Logger
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration, logger *utils.Logger) Client {
	return &httpClient{
		baseURL: baseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	LLMResponse string `json:"llm_response"`
}

type addResponse struct {
	Uploaded []string          `json:"uploaded"`
	Skipped  map[string]string `json:"skipped"`
	Error    string            `json:"error"`
}

type listResponse struct {
	Files []models.IndexedFile `json:"files"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *httpClient) Query(ctx context.Context, query string) (string, error) {
	var resp queryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/query", queryRequest{Query: query}, &resp); err != nil {
		return "", err
	}
	return resp.LLMResponse, nil
}

func (c *httpClient) AddFiles(ctx context.Context, files []models.FileInput) (*models.IndexResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		header.Set("Content-Type", f.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write form part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	var resp addResponse
	if err := c.do(ctx, http.MethodPost, "/add", writer.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	// The backend reports indexing failures inside a 200 response.
	if resp.Error != "" {
		return nil, fmt.Errorf("backend failed to add files: %s", resp.Error)
	}

	result := &models.IndexResult{Uploaded: resp.Uploaded, Skipped: resp.Skipped}
	if result.Uploaded == nil {
		result.Uploaded = []string{}
	}
	if result.Skipped == nil {
		result.Skipped = map[string]string{}
	}
	return result, nil
}

func (c *httpClient) ListFiles(ctx context.Context) ([]models.IndexedFile, error) {
	var resp listResponse
	if err := c.doJSON(ctx, http.MethodGet, "/list-files", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Files == nil {
		return []models.IndexedFile{}, nil
	}
	return resp.Files, nil
}

func (c *httpClient) DeleteEntries(ctx context.Context, ids []string) error {
	return c.doJSON(ctx, http.MethodDelete, "/delete-entries", deleteRequest{IDs: ids}, nil)
}

func (c *httpClient) ClearCollection(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/clear-db-content", nil, nil)
}

func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *httpClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Backend call", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Backend API error", "path", path, "status", resp.StatusCode, "body", string(respBody))
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil {
			if msg := firstNonEmpty(apiErr.Error, apiErr.Message); msg != "" {
				return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
