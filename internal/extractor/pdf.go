package extractor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

// PDFPageCount returns the number of pages in a PDF document. pdfcpu reads
// the page tree first; ledongthuc/pdf is tried when pdfcpu rejects the file.
func PDFPageCount(data []byte) (int, error) {
	n, err := pdfcpuPageCount(data)
	if err == nil {
		return n, nil
	}

	n, fallbackErr := ledongthucPageCount(data)
	if fallbackErr != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", errors.Join(err, fallbackErr))
	}

	return n, nil
}

func pdfcpuPageCount(data []byte) (n int, err error) {
	defer recoverParser("pdfcpu", &err)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err = api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("pdfcpu: document has no pages")
	}
	return n, nil
}

func ledongthucPageCount(data []byte) (n int, err error) {
	defer recoverParser("pdf", &err)

	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	n = pdfReader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("pdf: document has no pages")
	}
	return n, nil
}

// recoverParser turns a parser panic on malformed input into an error.
func recoverParser(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed document: %v", name, r)
	}
}
