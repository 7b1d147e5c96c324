package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// DocumentRepository persists the document list as a whole. Save replaces
// whatever was stored before; Load returns records in the order they were saved.
type DocumentRepository interface {
	Load(ctx context.Context) ([]models.DocumentMetadata, error)
	Save(ctx context.Context, docs []models.DocumentMetadata) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// documentRow stores timestamps as unix nanoseconds.
type documentRow struct {
	ID              string `db:"id"`
	DisplayName     string `db:"display_name"`
	DocumentType    string `db:"document_type"`
	ContentType     string `db:"content_type"`
	SizeBytes       int64  `db:"size_bytes"`
	SizeLabel       string `db:"size_label"`
	UploadedAt      int64  `db:"uploaded_at"`
	ModifiedAt      int64  `db:"modified_at"`
	UnitCount       int    `db:"unit_count"`
	ProcessingError string `db:"processing_error"`
}

func (r *documentRepository) Load(ctx context.Context) ([]models.DocumentMetadata, error) {
	query := `
		SELECT id, display_name, document_type, content_type, size_bytes, size_label,
		       uploaded_at, modified_at, unit_count, processing_error
		FROM documents
		ORDER BY position
	`

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	docs := make([]models.DocumentMetadata, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.DocumentMetadata{
			ID:              row.ID,
			DisplayName:     row.DisplayName,
			DocumentType:    models.DocumentType(row.DocumentType),
			ContentType:     row.ContentType,
			SizeBytes:       row.SizeBytes,
			SizeLabel:       row.SizeLabel,
			UploadedAt:      fromNanos(row.UploadedAt),
			ModifiedAt:      fromNanos(row.ModifiedAt),
			UnitCount:       row.UnitCount,
			ProcessingError: row.ProcessingError,
		})
	}

	return docs, nil
}

func (r *documentRepository) Save(ctx context.Context, docs []models.DocumentMetadata) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	query := `
		INSERT INTO documents (position, id, display_name, document_type, content_type, size_bytes,
		                       size_label, uploaded_at, modified_at, unit_count, processing_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, doc := range docs {
		_, err := tx.ExecContext(ctx, query,
			i,
			doc.ID,
			doc.DisplayName,
			string(doc.DocumentType),
			doc.ContentType,
			doc.SizeBytes,
			doc.SizeLabel,
			toNanos(doc.UploadedAt),
			toNanos(doc.ModifiedAt),
			doc.UnitCount,
			doc.ProcessingError,
		)
		if err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}
	return nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
