package extract

import "context"

// File is an uploaded document held in memory.
type File struct {
	Name string
	MIME string
	Data []byte
}

// ProgressFunc receives extraction progress events. status carries the phase
// name ("ocr_initializing", "ocr_recognizing"); progress is a normalized
// [0,1] fraction.
type ProgressFunc func(status string, progress float64)

// TextExtractor is Stage 1: file -> plain text.
type TextExtractor interface {
	Extract(ctx context.Context, f File, onProgress ProgressFunc) (string, error)
}

// OCREngine recognizes text in an image-only PDF, reporting progress.
type OCREngine interface {
	Available() bool
	RecognizePDF(ctx context.Context, data []byte, onProgress func(status string, fraction float64)) (string, error)
}
