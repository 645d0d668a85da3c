package constants

// DocumentStatus is the canonical lifecycle state for an uploaded document.
type DocumentStatus string

// Stable values (serialized as-is in API responses).
const (
	StatusParsing   DocumentStatus = "parsing"   // extraction in progress
	StatusOCR       DocumentStatus = "ocr"       // OCR sub-state inside PDF extraction
	StatusPending   DocumentStatus = "pending"   // text extracted, awaiting analysis
	StatusAnalyzing DocumentStatus = "analyzing" // AI request in flight
	StatusSuccess   DocumentStatus = "success"   // report available
	StatusError     DocumentStatus = "error"     // terminal until a manual retry
)
