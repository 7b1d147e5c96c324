// Package testfixtures builds minimal office documents in memory for tests.
package testfixtures

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePPT  = "application/vnd.ms-powerpoint"
	ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	ContentTypeTXT  = "text/plain"
	ContentTypeCSV  = "text/csv"
)

// PDF returns a valid PDF with the given number of empty pages.
func PDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	for i := 0; i < pages; i++ {
		writeObj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

// CorruptPDF returns bytes that carry a PDF header but no readable structure.
func CorruptPDF() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Pages 2 0 R\nthis file was truncated")
}

// Entry is a single zip member.
type Entry struct {
	Name string
	Body string
}

// Zip packs entries into a zip archive in the given order.
func Zip(entries ...Entry) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			panic(err)
		}
		if _, err := f.Write([]byte(e.Body)); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PPTX returns a presentation container with the given number of slide parts,
// plus the relationship and layout parts a real deck carries.
func PPTX(slides int) []byte {
	entries := []Entry{
		{Name: "[Content_Types].xml", Body: `<?xml version="1.0"?><Types/>`},
		{Name: "ppt/presentation.xml", Body: `<?xml version="1.0"?><p:presentation/>`},
		{Name: "ppt/slideLayouts/slideLayout1.xml", Body: `<?xml version="1.0"?><p:sldLayout/>`},
	}
	for i := 1; i <= slides; i++ {
		entries = append(entries,
			Entry{Name: fmt.Sprintf("ppt/slides/slide%d.xml", i), Body: `<?xml version="1.0"?><p:sld/>`},
			Entry{Name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i), Body: `<?xml version="1.0"?><Relationships/>`},
		)
	}
	return Zip(entries...)
}

// DOCX returns a word-processing container with one paragraph per argument.
func DOCX(paragraphs ...string) []byte {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t xml:space="preserve">`)
		if err := xml.EscapeText(&body, []byte(p)); err != nil {
			panic(err)
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`<w:sectPr/></w:body></w:document>`)

	return Zip(
		Entry{Name: "[Content_Types].xml", Body: `<?xml version="1.0"?><Types/>`},
		Entry{Name: "word/document.xml", Body: body.String()},
	)
}
