package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/services"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
	"github.com/gorilla/mux"
)

const (
	filesField        = "files"
	lastModifiedField = "last_modified"

	// multipartMemory is how much of a form is buffered in memory before
	// spilling file parts to disk.
	multipartMemory = 32 << 20
)

type Limits struct {
	MaxFileSize   int64
	MaxUploadSize int64
}

type DocumentHandler struct {
	service services.DocumentService
	limits  Limits
	logger  *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, limits Limits, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		limits:  limits,
		logger:  logger,
	}
}

func (h *DocumentHandler) SupportedTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"types": h.service.SupportedTypes(),
	})
}

func (h *DocumentHandler) InspectDocuments(w http.ResponseWriter, r *http.Request) {
	files, err := h.readFiles(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.service.InspectDocuments(r.Context(), files)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *DocumentHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	files, err := h.readFiles(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if len(files) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("No files provided"))
		return
	}

	resp, err := h.service.UploadDocuments(r.Context(), files)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	status := http.StatusCreated
	if len(resp.Documents) == 0 {
		status = http.StatusOK
	}
	respondJSON(w, h.logger, status, resp)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDocuments(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Document ID is required"))
		return
	}

	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) GetDocumentContent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Document ID is required"))
		return
	}

	doc, data, err := h.service.GetDocumentContent(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.DisplayName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write document content", "error", err, "id", id)
	}
}

func (h *DocumentHandler) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	resp, err := h.service.DeleteDocuments(r.Context(), req.IDs)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *DocumentHandler) PurgeDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PurgeDocuments(r.Context()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "All documents deleted successfully",
	})
}

func (h *DocumentHandler) ListIndexedFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListIndexedFiles(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"files": files,
	})
}

// readFiles pulls every "files" part out of a multipart request. The optional
// "last_modified" values are matched to files by position.
func (h *DocumentHandler) readFiles(w http.ResponseWriter, r *http.Request) ([]models.FileInput, error) {
	// Check Content-Length header first to reject oversized requests early
	if r.ContentLength > h.limits.MaxUploadSize {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Upload exceeds %s limit", utils.FormatFileSize(h.limits.MaxUploadSize)))
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, utils.NewBadRequestError(fmt.Sprintf("Upload exceeds %s limit", utils.FormatFileSize(h.limits.MaxUploadSize)))
		}
		return nil, utils.NewBadRequestError("Invalid form data")
	}

	headers := r.MultipartForm.File[filesField]
	modified := r.MultipartForm.Value[lastModifiedField]
	now := time.Now()

	files := make([]models.FileInput, 0, len(headers))
	for i, header := range headers {
		if header.Size > h.limits.MaxFileSize {
			return nil, utils.NewBadRequestError(fmt.Sprintf("File %q exceeds %s limit", header.Filename, utils.FormatFileSize(h.limits.MaxFileSize)))
		}

		data, err := readPart(header, h.limits.MaxFileSize)
		if err != nil {
			h.logger.Error("Failed to read uploaded file", "error", err, "filename", header.Filename)
			return nil, utils.NewInternalError("Failed to read file")
		}

		modifiedAt := now
		if i < len(modified) {
			if ms, err := strconv.ParseInt(strings.TrimSpace(modified[i]), 10, 64); err == nil && ms > 0 {
				modifiedAt = time.UnixMilli(ms)
			}
		}

		contentType := determineContentType(header.Filename, header.Header.Get("Content-Type"))

		h.logger.Debug("File received",
			"filename", header.Filename,
			"reported_content_type", header.Header.Get("Content-Type"),
			"determined_content_type", contentType,
			"size", len(data))

		files = append(files, models.FileInput{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
			ModifiedAt:  modifiedAt,
		})
	}

	return files, nil
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, limit))
}

// determineContentType keeps the declared content type and only falls back to
// the file extension when the client sent none or a generic binary type.
func determineContentType(filename, headerContentType string) string {
	if headerContentType != "" && headerContentType != "application/octet-stream" {
		return headerContentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	}

	return headerContentType
}
