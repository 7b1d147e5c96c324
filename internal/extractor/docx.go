package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordDocumentPart = "word/document.xml"

// ExtractDOCX returns the plain text of a WordprocessingML document.
// Paragraphs are joined with a single newline. An empty body yields "".
func ExtractDOCX(data []byte) (string, error) {
	zipReader, err := openZip(data)
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX as ZIP: %w", err)
	}

	var documentFile *zip.File
	for _, file := range zipReader.File {
		if file.Name == wordDocumentPart {
			documentFile = file
			break
		}
	}

	if documentFile == nil {
		return "", fmt.Errorf("document.xml not found in DOCX")
	}

	xmlFile, err := documentFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer xmlFile.Close()

	text, err := wordText(xmlFile)
	if err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	return text, nil
}

func wordText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var textBuilder strings.Builder
	var paragraphs int
	var inText, sawDocument bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "document":
				sawDocument = true
			case "p":
				if paragraphs > 0 {
					textBuilder.WriteString("\n")
				}
				paragraphs++
			case "t":
				inText = true
			case "br", "cr":
				textBuilder.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(el)
			}
		}
	}

	if !sawDocument {
		return "", fmt.Errorf("no document element")
	}

	return textBuilder.String(), nil
}

// ZipEntryNames lists the entry names of a zip container in archive order.
func ZipEntryNames(data []byte) ([]string, error) {
	zipReader, err := openZip(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read ZIP container: %w", err)
	}

	names := make([]string, 0, len(zipReader.File))
	for _, file := range zipReader.File {
		names = append(names, file.Name)
	}
	return names, nil
}

func openZip(data []byte) (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}
