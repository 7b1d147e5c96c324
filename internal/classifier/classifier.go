// Package classifier maps declared MIME content types onto document type tags.
package classifier

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
)

var ErrUnsupportedType = errors.New("file type not allowed")

// allowedContentTypes is matched exactly; parameters such as charset are not stripped.
var allowedContentTypes = map[string]models.DocumentType{
	"application/pdf":    models.TypePDF,
	"application/msword": models.TypeDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   models.TypeDOCX,
	"application/vnd.ms-powerpoint":                                             models.TypePPT,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.TypePPTX,
	"text/plain": models.TypeTXT,
	"text/csv":   models.TypeCSV,
}

// Classify returns the document type for a declared content type.
func Classify(contentType string) (models.DocumentType, error) {
	docType, ok := allowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return docType, nil
}

// ContentTypes returns the allow-list keyed by content type, sorted by content type.
func ContentTypes() []ContentTypeMapping {
	mappings := make([]ContentTypeMapping, 0, len(allowedContentTypes))
	for ct, dt := range allowedContentTypes {
		mappings = append(mappings, ContentTypeMapping{ContentType: ct, DocumentType: dt})
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].ContentType < mappings[j].ContentType
	})
	return mappings
}

type ContentTypeMapping struct {
	ContentType  string              `json:"content_type"`
	DocumentType models.DocumentType `json:"document_type"`
}
