// Package extract converts uploaded file bytes into plain text, choosing a
// strategy by media type (falling back to filename extension) and switching
// to OCR for PDFs that look image-only.
package extract

import (
	"context"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/common"
)

// ScannedCharsPerPage is the scanned-document heuristic threshold: a PDF
// whose whitespace-stripped text is shorter than this many characters per
// page is treated as image-only and routed to OCR.
const ScannedCharsPerPage = 100

// User-facing messages (display language follows the product).
const (
	MsgUnsupportedFileType = "Loại tệp không được hỗ trợ. Vui lòng sử dụng .pdf, .docx, .txt, hoặc .md."
	MsgOCRUnavailable      = "Công cụ OCR chưa được cài đặt. Không thể xử lý PDF được quét."
)

type Extractor struct {
	ocr     OCREngine
	readPDF func(data []byte) (text string, pages int, err error)
	logger  *slog.Logger
}

func NewExtractor(ocr OCREngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{ocr: ocr, readPDF: directPDFText, logger: logger}
}

// Extract dispatches on the declared media type, then the extension.
func (e *Extractor) Extract(ctx context.Context, f File, onProgress ProgressFunc) (string, error) {
	switch constants.DetectFormat(f.MIME, f.Name) {
	case constants.TEXT:
		return string(f.Data), nil
	case constants.DOCX:
		return extractDOCX(f.Data)
	case constants.PDF:
		return e.extractPDF(ctx, f, onProgress)
	default:
		e.logger.Warn("unsupported file type", "file", f.Name, "mime", f.MIME)
		return "", common.NewAppError("UNSUPPORTED_FILE_TYPE", MsgUnsupportedFileType, common.ErrUnsupportedFileType, nil)
	}
}

var whitespace = regexp.MustCompile(`\s`)

// isScanned applies the scanned-document heuristic: strip all whitespace and
// compare the remaining character count against ScannedCharsPerPage per page.
// Characters, not bytes: Vietnamese letters are multi-byte and must not
// inflate the count.
func isScanned(text string, pages int) bool {
	return utf8.RuneCountInString(whitespace.ReplaceAllString(text, "")) < ScannedCharsPerPage*pages
}

func (e *Extractor) extractPDF(ctx context.Context, f File, onProgress ProgressFunc) (string, error) {
	text, pages, err := e.readPDF(f.Data)
	if err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", err.Error(), common.ErrExtractionFailed, err)
	}

	if !isScanned(text, pages) {
		return text, nil
	}

	// Image-only PDF: the OCR result replaces the direct text entirely.
	if e.ocr == nil || !e.ocr.Available() {
		return "", common.NewAppError("DEPENDENCY_UNAVAILABLE", MsgOCRUnavailable, common.ErrDependencyUnavailable, nil)
	}
	e.logger.Info("pdf looks scanned, switching to ocr",
		"file", f.Name, "pages", pages, "direct_chars", utf8.RuneCountInString(text))

	recognized, err := e.ocr.RecognizePDF(ctx, f.Data, onProgress)
	if err != nil {
		return "", common.NewAppError("EXTRACTION_FAILED", err.Error(), common.ErrExtractionFailed, err)
	}
	return recognized, nil
}
