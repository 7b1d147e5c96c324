// Package pagecount estimates how many pages or slides a classified document has.
// Each document family has its own Strategy.
package pagecount

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-metadata-api/internal/extractor"
	"github.com/BerylCAtieno/document-metadata-api/internal/models"
)

// CharsPerPage is the fixed characters-per-page ratio for word-processor documents.
const CharsPerPage = 2000

const (
	slidePrefix = "ppt/slides/"
	slideSuffix = ".xml"
)

// Strategy turns raw file bytes into a unit count.
type Strategy func(data []byte) (int, error)

// Estimator dispatches a document type to its strategy.
type Estimator struct {
	PDF    Strategy
	Text   Strategy
	Word   Strategy
	Slides Strategy
}

// NewEstimator returns an Estimator wired with the default strategies.
func NewEstimator() *Estimator {
	return &Estimator{
		PDF:    PDFPages,
		Text:   TextLines,
		Word:   WordPages,
		Slides: SlideParts,
	}
}

// Estimate returns the unit count for data of the given type. On error the
// returned count is models.DefaultUnitCount.
func (e *Estimator) Estimate(docType models.DocumentType, data []byte) (int, error) {
	var strategy Strategy

	switch docType {
	case models.TypePDF:
		strategy = e.PDF
	case models.TypeTXT, models.TypeCSV:
		strategy = e.Text
	case models.TypeDOCX, models.TypeDOC:
		strategy = e.Word
	case models.TypePPTX:
		strategy = e.Slides
	case models.TypePPT:
		// The legacy binary presentation layout is not parsed.
		return models.DefaultUnitCount, nil
	default:
		return models.DefaultUnitCount, fmt.Errorf("no page count strategy for document type %q", docType)
	}

	if strategy == nil {
		return models.DefaultUnitCount, nil
	}

	n, err := strategy(data)
	if err != nil {
		return models.DefaultUnitCount, err
	}
	if n < models.DefaultUnitCount {
		n = models.DefaultUnitCount
	}
	return n, nil
}

// PDFPages counts the page objects of a PDF document.
func PDFPages(data []byte) (int, error) {
	return extractor.PDFPageCount(data)
}

// TextLines counts newline-delimited lines. A trailing newline opens one more
// (empty) line, and an empty file has one line.
func TextLines(data []byte) (int, error) {
	text, err := extractor.DecodeText(data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode text: %w", err)
	}
	return strings.Count(text, "\n") + 1, nil
}

// WordPages estimates pages as ceil(characters / CharsPerPage), at least one.
func WordPages(data []byte) (int, error) {
	text, err := extractor.ExtractDOCX(data)
	if err != nil {
		return 0, err
	}
	return pagesForChars(utf8.RuneCountInString(text)), nil
}

// SlideParts counts the slide parts of a presentation container.
func SlideParts(data []byte) (int, error) {
	names, err := extractor.ZipEntryNames(data)
	if err != nil {
		return 0, err
	}

	var slides int
	for _, name := range names {
		if strings.HasPrefix(name, slidePrefix) && strings.HasSuffix(name, slideSuffix) {
			slides++
		}
	}
	return slides, nil
}

func pagesForChars(chars int) int {
	pages := (chars + CharsPerPage - 1) / CharsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}
