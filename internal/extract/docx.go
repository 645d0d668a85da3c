package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/paperdesk/paperdesk/internal/common"
)

// documentXML mirrors the fragment of word/document.xml we care about:
// paragraphs of runs of text nodes.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// extractDOCX reads word/document.xml out of the zip container and joins
// paragraph text with newlines.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", "open docx: not a zip archive", common.ErrExtractionFailed, err)
	}

	var docEntry *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docEntry = f
			break
		}
	}
	if docEntry == nil {
		return "", common.NewAppError("EXTRACTION_FAILED", "docx missing word/document.xml", common.ErrExtractionFailed, nil)
	}

	rc, err := docEntry.Open()
	if err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", "open word/document.xml", common.ErrExtractionFailed, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", "read word/document.xml", common.ErrExtractionFailed, err)
	}

	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", fmt.Sprintf("parse word/document.xml: %v", err), common.ErrExtractionFailed, err)
	}

	var paragraphs []string
	for _, p := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				b.WriteString(t)
			}
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n"), nil
}
