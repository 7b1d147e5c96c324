package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/BerylCAtieno/document-metadata-api/internal/backend"
	"github.com/BerylCAtieno/document-metadata-api/internal/batch"
	"github.com/BerylCAtieno/document-metadata-api/internal/classifier"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/repository"
	"github.com/BerylCAtieno/document-metadata-api/internal/storage"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

const duplicateInBatch = "duplicate of another file in this upload"

type DocumentService interface {
	SupportedTypes() []classifier.ContentTypeMapping
	InspectDocuments(ctx context.Context, files []models.FileInput) (*models.BatchResult, error)
	UploadDocuments(ctx context.Context, files []models.FileInput) (*models.UploadResponse, error)
	ListDocuments(ctx context.Context) ([]models.DocumentMetadata, error)
	GetDocument(ctx context.Context, id string) (*models.DocumentMetadata, error)
	GetDocumentContent(ctx context.Context, id string) (*models.DocumentMetadata, []byte, error)
	DeleteDocuments(ctx context.Context, ids []string) (*models.DeleteResponse, error)
	PurgeDocuments(ctx context.Context) error
	ListIndexedFiles(ctx context.Context) ([]models.IndexedFile, error)
}

type documentService struct {
	repo      repository.DocumentRepository
	processor *batch.Processor
	storage   storage.Storage
	backend   backend.Client
	logger    *utils.Logger

	// mu serializes load-modify-save cycles on the document list.
	mu sync.Mutex
}

// NewService wires the document service. store may be nil when object storage
// is disabled; the backend client reports backend.ErrNotConfigured itself.
func NewService(repo repository.DocumentRepository, processor *batch.Processor, store storage.Storage, client backend.Client, logger *utils.Logger) DocumentService {
	return &documentService{
		repo:      repo,
		processor: processor,
		storage:   store,
		backend:   client,
		logger:    logger,
	}
}

func (s *documentService) SupportedTypes() []classifier.ContentTypeMapping {
	return classifier.ContentTypes()
}

func (s *documentService) InspectDocuments(ctx context.Context, files []models.FileInput) (*models.BatchResult, error) {
	result, err := s.processor.Process(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("batch processing cancelled: %w", err)
	}
	return result, nil
}

func (s *documentService) UploadDocuments(ctx context.Context, files []models.FileInput) (*models.UploadResponse, error) {
	result, err := s.processor.Process(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("batch processing cancelled: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return nil, utils.NewInternalError("Failed to load stored documents")
	}

	stored := make(map[string]string, len(existing))
	for _, doc := range existing {
		stored[doc.ID] = doc.DisplayName
	}

	inputs := make(map[string]models.FileInput, len(files))
	for _, f := range files {
		inputs[utils.ContentID(f.Data)] = f
	}

	skipped := map[string]string{}
	seen := map[string]bool{}
	var fresh []models.DocumentMetadata
	for _, doc := range result.Documents {
		if original, ok := stored[doc.ID]; ok {
			skipped[doc.DisplayName] = original
			continue
		}
		if seen[doc.ID] {
			skipped[doc.DisplayName] = duplicateInBatch
			continue
		}
		seen[doc.ID] = true
		fresh = append(fresh, doc)
	}

	fresh, err = s.indexDocuments(ctx, fresh, inputs, skipped)
	if err != nil {
		return nil, err
	}

	if err := s.storeDocuments(ctx, fresh, inputs); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, append(existing, fresh...)); err != nil {
		s.logger.Error("Failed to save documents", "error", err)
		s.removeBlobs(ctx, fresh)
		return nil, utils.NewInternalError("Failed to save document metadata")
	}

	s.logger.Info("Documents uploaded",
		"uploaded", len(fresh),
		"rejected", len(result.Rejected),
		"skipped", len(skipped))

	if fresh == nil {
		fresh = []models.DocumentMetadata{}
	}

	return &models.UploadResponse{
		Documents: fresh,
		Rejected:  result.Rejected,
		Skipped:   skipped,
		Message:   uploadMessage(len(fresh), len(result.Rejected), len(skipped)),
	}, nil
}

// indexDocuments forwards new files to the RAG backend and drops the ones it
// already holds under another name.
func (s *documentService) indexDocuments(ctx context.Context, docs []models.DocumentMetadata, inputs map[string]models.FileInput, skipped map[string]string) ([]models.DocumentMetadata, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	files := make([]models.FileInput, 0, len(docs))
	for _, doc := range docs {
		files = append(files, inputs[doc.ID])
	}

	indexed, err := s.backend.AddFiles(ctx, files)
	if errors.Is(err, backend.ErrNotConfigured) {
		s.logger.Debug("Backend not configured, skipping indexing", "files", len(files))
		return docs, nil
	}
	if err != nil {
		s.logger.Error("Failed to index documents", "error", err, "files", len(files))
		return nil, utils.NewBadGatewayError("Failed to add documents to the index", err)
	}

	kept := docs[:0:0]
	for _, doc := range docs {
		if original, ok := indexed.Skipped[doc.DisplayName]; ok {
			skipped[doc.DisplayName] = original
			continue
		}
		kept = append(kept, doc)
	}
	return kept, nil
}

func (s *documentService) storeDocuments(ctx context.Context, docs []models.DocumentMetadata, inputs map[string]models.FileInput) error {
	if s.storage == nil {
		return nil
	}

	for i, doc := range docs {
		key := storage.ObjectKey(doc.ID, doc.DisplayName)
		if err := s.storage.Upload(ctx, key, inputs[doc.ID].Data, doc.ContentType); err != nil {
			s.logger.Error("Failed to upload to S3", "error", err, "s3_key", key)
			s.removeBlobs(ctx, docs[:i])
			return utils.NewInternalError("Failed to store document")
		}
		s.logger.Info("Document stored",
			"id", doc.ID,
			"filename", doc.DisplayName,
			"size", humanize.Bytes(uint64(doc.SizeBytes)),
			"unit_count", doc.UnitCount)
	}
	return nil
}

func (s *documentService) removeBlobs(ctx context.Context, docs []models.DocumentMetadata) {
	if s.storage == nil {
		return
	}
	for _, doc := range docs {
		key := storage.ObjectKey(doc.ID, doc.DisplayName)
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete stored document", "error", err, "s3_key", key)
		}
	}
}

func (s *documentService) ListDocuments(ctx context.Context) ([]models.DocumentMetadata, error) {
	docs, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve documents")
	}
	return docs, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.DocumentMetadata, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, utils.NewNotFoundError("Document not found")
}

func (s *documentService) GetDocumentContent(ctx context.Context, id string) (*models.DocumentMetadata, []byte, error) {
	if s.storage == nil {
		return nil, nil, utils.NewServiceUnavailableError("Object storage is not configured")
	}

	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	key := storage.ObjectKey(doc.ID, doc.DisplayName)
	data, err := s.storage.Download(ctx, key)
	if err != nil {
		s.logger.Error("Failed to download from S3", "error", err, "s3_key", key)
		return nil, nil, utils.NewInternalError("Failed to retrieve document content")
	}
	return doc, data, nil
}

func (s *documentService) DeleteDocuments(ctx context.Context, ids []string) (*models.DeleteResponse, error) {
	if len(ids) == 0 {
		return nil, utils.NewBadRequestError("At least one document ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve documents")
	}

	targets := make(map[string]bool, len(ids))
	for _, id := range ids {
		targets[id] = true
	}

	var remaining, removed []models.DocumentMetadata
	for _, doc := range docs {
		if targets[doc.ID] {
			removed = append(removed, doc)
		} else {
			remaining = append(remaining, doc)
		}
	}
	if len(removed) == 0 {
		return nil, utils.NewNotFoundError("No matching documents found")
	}

	if err := s.backend.DeleteEntries(ctx, ids); err != nil && !errors.Is(err, backend.ErrNotConfigured) {
		s.logger.Error("Failed to delete index entries", "error", err, "ids", ids)
		return nil, utils.NewBadGatewayError("Failed to remove documents from the index", err)
	}

	if err := s.repo.Save(ctx, remaining); err != nil {
		s.logger.Error("Failed to save documents", "error", err)
		return nil, utils.NewInternalError("Failed to delete documents")
	}
	s.removeBlobs(ctx, removed)

	s.logger.Info("Documents deleted", "deleted", len(removed))

	return &models.DeleteResponse{
		Deleted: len(removed),
		Message: fmt.Sprintf("%s deleted successfully", plural(len(removed), "file", "files")),
	}, nil
}

func (s *documentService) PurgeDocuments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ClearCollection(ctx); err != nil && !errors.Is(err, backend.ErrNotConfigured) {
		s.logger.Error("Failed to clear index", "error", err)
		return utils.NewBadGatewayError("Failed to purge the index", err)
	}

	docs, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return utils.NewInternalError("Failed to retrieve documents")
	}

	if err := s.repo.Save(ctx, nil); err != nil {
		s.logger.Error("Failed to clear documents", "error", err)
		return utils.NewInternalError("Failed to purge documents")
	}
	s.removeBlobs(ctx, docs)

	s.logger.Info("Documents purged", "deleted", len(docs))
	return nil
}

func (s *documentService) ListIndexedFiles(ctx context.Context) ([]models.IndexedFile, error) {
	files, err := s.backend.ListFiles(ctx)
	if errors.Is(err, backend.ErrNotConfigured) {
		return nil, utils.NewServiceUnavailableError("RAG backend is not configured")
	}
	if err != nil {
		s.logger.Error("Failed to list indexed files", "error", err)
		return nil, utils.NewBadGatewayError("Failed to list indexed files", err)
	}
	return files, nil
}

func uploadMessage(uploaded, rejected, skipped int) string {
	msg := fmt.Sprintf("%s uploaded successfully", plural(uploaded, "file", "files"))
	if rejected > 0 {
		msg += fmt.Sprintf(", %s rejected", plural(rejected, "file", "files"))
	}
	if skipped > 0 {
		msg += fmt.Sprintf(", %s skipped as duplicates", plural(skipped, "file", "files"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
