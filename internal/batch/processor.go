// Package batch classifies a batch of uploaded files and estimates their unit
// counts, producing one metadata record per accepted file in input order.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/document-metadata-api/internal/classifier"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/pagecount"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

type Processor struct {
	estimator *pagecount.Estimator
	workers   int
	logger    *utils.Logger

	// Clock stamps UploadedAt on new records.
	Clock func() time.Time
}

// NewProcessor returns a Processor running up to workers files at once.
// A worker count below one processes files sequentially.
func NewProcessor(estimator *pagecount.Estimator, workers int, logger *utils.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		estimator: estimator,
		workers:   workers,
		logger:    logger,
		Clock:     time.Now,
	}
}

type outcome struct {
	document *models.DocumentMetadata
	rejected *models.RejectedFile
}

// Process runs classification and estimation over files. Per-file failures
// never fail the batch: unsupported types land in Rejected and parse errors
// are recorded on the document itself. Cancelling ctx stops new files from
// being started and makes Process return ctx.Err().
func (p *Processor) Process(ctx context.Context, files []models.FileInput) (*models.BatchResult, error) {
	result := &models.BatchResult{
		Documents: []models.DocumentMetadata{},
		Rejected:  []models.RejectedFile{},
	}
	if len(files) == 0 {
		return result, nil
	}

	start := time.Now()
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.processFile(&files[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Warn("Batch cancelled", "error", err, "files", len(files))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		p.logger.Warn("Batch cancelled", "error", err, "files", len(files))
		return nil, err
	}

	for _, o := range outcomes {
		switch {
		case o.document != nil:
			result.Documents = append(result.Documents, *o.document)
		case o.rejected != nil:
			result.Rejected = append(result.Rejected, *o.rejected)
		}
	}

	p.logger.Info("Batch processed",
		"files", len(files),
		"documents", len(result.Documents),
		"rejected", len(result.Rejected),
		"latency", time.Since(start))

	return result, nil
}

func (p *Processor) processFile(file *models.FileInput) outcome {
	docType, err := classifier.Classify(file.ContentType)
	if err != nil {
		p.logger.Warn("Unsupported content type", "filename", file.Name, "content_type", file.ContentType)
		return outcome{rejected: &models.RejectedFile{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reason:      err.Error(),
		}}
	}

	doc := newDocument(file, docType, p.Clock())

	count, err := p.estimator.Estimate(docType, file.Data)
	if err != nil {
		p.logger.Error("Failed to estimate unit count",
			"error", err,
			"filename", file.Name,
			"document_type", docType)
		doc.ProcessingError = fmt.Sprintf("failed to process file: %v", err)
		return outcome{document: &doc}
	}

	doc.UnitCount = count
	return outcome{document: &doc}
}

func newDocument(file *models.FileInput, docType models.DocumentType, now time.Time) models.DocumentMetadata {
	size := int64(len(file.Data))
	return models.DocumentMetadata{
		ID:           utils.ContentID(file.Data),
		DisplayName:  file.Name,
		DocumentType: docType,
		ContentType:  file.ContentType,
		SizeBytes:    size,
		SizeLabel:    utils.FormatFileSize(size),
		UploadedAt:   now,
		ModifiedAt:   file.ModifiedAt,
		UnitCount:    models.DefaultUnitCount,
	}
}
