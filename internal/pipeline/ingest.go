// Package pipeline drives the two document stages: concurrent text
// extraction on upload, and strictly sequential AI analysis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/store"
)

// Ingestor registers uploads and runs extraction in the background, one
// goroutine per file.
type Ingestor struct {
	store     *store.Store
	extractor extract.TextExtractor
	logger    *slog.Logger

	nextID atomic.Int64
	wg     sync.WaitGroup
}

func NewIngestor(st *store.Store, ex extract.TextExtractor, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: st, extractor: ex, logger: logger}
}

// AddFiles registers every file synchronously in the parsing state, then
// kicks off extraction for each. The returned documents reflect the initial
// records; extraction results land in the store as they complete.
//
// Identifiers are never reused, even across Reset, so a late update from an
// extraction that outlived a reset cannot hit a new record.
func (ing *Ingestor) AddFiles(ctx context.Context, files []extract.File) []store.Document {
	docs := make([]store.Document, 0, len(files))
	for _, f := range files {
		id := ing.nextID.Add(1) - 1
		docs = append(docs, store.Document{
			ID:     fmt.Sprintf("file-%d", id),
			Source: store.SourceFile{Name: f.Name, MIME: f.MIME, Data: f.Data},
			Status: constants.StatusParsing,
		})
	}
	ing.store.Add(docs...)

	for i := range docs {
		doc := docs[i]
		ing.wg.Add(1)
		go func() {
			defer ing.wg.Done()
			ing.extractOne(ctx, doc)
		}()
	}
	return docs
}

// Wait blocks until all in-flight extractions finish. For CLI runs and tests;
// the HTTP server never waits.
func (ing *Ingestor) Wait() {
	ing.wg.Wait()
}

func (ing *Ingestor) extractOne(ctx context.Context, doc store.Document) {
	ing.logger.Info("ingest.extract.start", "doc_id", doc.ID, "file", doc.Source.Name, "bytes", len(doc.Source.Data))

	onProgress := func(status string, fraction float64) {
		// Only OCR phases surface as document state; other extraction
		// progress is invisible.
		if !strings.HasPrefix(status, "ocr") {
			return
		}
		pct := int(math.Round(fraction * 100))
		st := constants.StatusOCR
		ing.store.Update(doc.ID, store.Patch{Status: &st, Progress: &pct})
	}

	text, err := ing.extractor.Extract(ctx, extract.File{
		Name: doc.Source.Name,
		MIME: doc.Source.MIME,
		Data: doc.Source.Data,
	}, onProgress)

	if err != nil {
		msg := common.UserMessage(err)
		if msg == "" {
			msg = "Lỗi không xác định trong quá trình phân tích cú pháp."
		}
		st := constants.StatusError
		ing.store.Update(doc.ID, store.Patch{Status: &st, ErrorMessage: &msg, ClearProgress: true})
		ing.logger.Error("ingest.extract.error", "doc_id", doc.ID, "file", doc.Source.Name, "error", err)
		return
	}

	st := constants.StatusPending
	ing.store.Update(doc.ID, store.Patch{Text: &text, Status: &st, ClearProgress: true})
	ing.logger.Info("ingest.extract.ok", "doc_id", doc.ID, "file", doc.Source.Name, "text_len", len(text))
}
