package models

import (
	"time"
)

// DocumentType is the canonical tag a file is classified under.
type DocumentType string

const (
	TypePDF  DocumentType = "PDF"
	TypeDOC  DocumentType = "DOC"
	TypeDOCX DocumentType = "DOCX"
	TypePPT  DocumentType = "PPT"
	TypePPTX DocumentType = "PPTX"
	TypeTXT  DocumentType = "TXT"
	TypeCSV  DocumentType = "CSV"
)

// DocumentTypes lists every supported tag in a stable order.
var DocumentTypes = []DocumentType{TypePDF, TypeDOC, TypeDOCX, TypePPT, TypePPTX, TypeTXT, TypeCSV}

// DefaultUnitCount is used whenever a page count cannot be estimated.
const DefaultUnitCount = 1

// FileInput is one raw file handed to the batch pipeline.
type FileInput struct {
	Name        string
	ContentType string
	Data        []byte
	ModifiedAt  time.Time
}

type DocumentMetadata struct {
	ID              string       `json:"id" db:"id"`
	DisplayName     string       `json:"display_name" db:"display_name"`
	DocumentType    DocumentType `json:"document_type" db:"document_type"`
	ContentType     string       `json:"content_type" db:"content_type"`
	SizeBytes       int64        `json:"size_bytes" db:"size_bytes"`
	SizeLabel       string       `json:"size_label" db:"size_label"`
	UploadedAt      time.Time    `json:"uploaded_at" db:"uploaded_at"`
	ModifiedAt      time.Time    `json:"modified_at" db:"modified_at"`
	UnitCount       int          `json:"unit_count" db:"unit_count"`
	ProcessingError string       `json:"processing_error,omitempty" db:"processing_error"`
}

// RejectedFile reports a file that produced no metadata record.
type RejectedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Reason      string `json:"reason"`
}

// BatchResult holds the records and rejections of one batch, both in input order.
type BatchResult struct {
	Documents []DocumentMetadata `json:"documents"`
	Rejected  []RejectedFile     `json:"rejected"`
}

type UploadResponse struct {
	Documents []DocumentMetadata `json:"documents"`
	Rejected  []RejectedFile     `json:"rejected"`
	Skipped   map[string]string  `json:"skipped"`
	Message   string             `json:"message"`
}

type DeleteRequest struct {
	IDs []string `json:"ids"`
}

type DeleteResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// IndexedFile is a document entry as reported by the RAG backend.
type IndexedFile struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"filetype"`
	UploadTime string `json:"upload_time"`
}

// IndexResult is the backend's answer to an add request.
type IndexResult struct {
	Uploaded []string          `json:"uploaded"`
	Skipped  map[string]string `json:"skipped"`
}
