package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/store"
)

// ErrAnalysisBusy is returned when a batch or retry is requested while an
// analysis run is already in flight.
var ErrAnalysisBusy = errors.New("analysis already running")

// Analyzer is the single per-document AI call the sequencer depends on.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, text string) (string, error)
}

// BatchProgress is the 1-indexed position of the batch: Current is the
// ordinal of the document being analyzed.
type BatchProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// DefaultPacing is the pause between consecutive documents in a batch,
// keeping request rates under free-tier quotas.
const DefaultPacing = 4 * time.Second

// Sequencer runs AI analysis strictly one document at a time. A single
// in-flight flag covers batches and retries alike.
type Sequencer struct {
	store    *store.Store
	analyzer Analyzer
	logger   *slog.Logger

	pacing time.Duration
	sleep  func(ctx context.Context, d time.Duration)

	busy atomic.Bool

	mu       sync.Mutex
	progress *BatchProgress
}

func NewSequencer(st *store.Store, an Analyzer, pacing time.Duration, logger *slog.Logger) *Sequencer {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		store:    st,
		analyzer: an,
		logger:   logger,
		pacing:   pacing,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Running reports whether an analysis run is in flight.
func (s *Sequencer) Running() bool {
	return s.busy.Load()
}

// Progress returns the current batch position, or nil outside a batch.
func (s *Sequencer) Progress() *BatchProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return nil
	}
	p := *s.progress
	return &p
}

func (s *Sequencer) setProgress(p *BatchProgress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// RunBatch analyzes every eligible document (pending with extracted text), in
// insertion order, synchronously. Eligibility is decided once at the start; a
// failure marks that document and the batch moves on.
func (s *Sequencer) RunBatch(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrAnalysisBusy
	}
	defer s.busy.Store(false)
	defer s.setProgress(nil)

	s.runLocked(ctx)
	return ctx.Err()
}

// StartBatch launches RunBatch in the background, reserving the in-flight
// flag before returning so a concurrent request cannot start a second run.
func (s *Sequencer) StartBatch(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrAnalysisBusy
	}
	go func() {
		defer s.busy.Store(false)
		defer s.setProgress(nil)
		s.runLocked(ctx)
	}()
	return nil
}

// runLocked is RunBatch's body, assuming the caller holds the busy flag.
func (s *Sequencer) runLocked(ctx context.Context) {
	var eligible []store.Document
	for _, d := range s.store.List() {
		if d.Status == constants.StatusPending && d.Text != "" {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return
	}

	s.logger.Info("analysis.batch.start", "total", len(eligible), "pacing", s.pacing)
	for i, doc := range eligible {
		s.setProgress(&BatchProgress{Current: i + 1, Total: len(eligible)})
		s.analyzeOne(ctx, doc)

		if i < len(eligible)-1 {
			s.sleep(ctx, s.pacing)
		}
		if ctx.Err() != nil {
			s.logger.Warn("analysis.batch.canceled", "done", i+1, "total", len(eligible))
			return
		}
	}
	s.logger.Info("analysis.batch.ok", "total", len(eligible))
}

// Retry re-analyzes a single document, subject to the same single-flight
// rule as batches.
func (s *Sequencer) Retry(ctx context.Context, id string) error {
	doc, ok := s.store.Get(id)
	if !ok {
		return errors.New("document not found")
	}
	if doc.Text == "" {
		return errors.New("document has no extracted text")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrAnalysisBusy
	}
	defer s.busy.Store(false)

	s.analyzeOne(ctx, doc)
	return nil
}

func (s *Sequencer) analyzeOne(ctx context.Context, doc store.Document) {
	start := time.Now()
	st := constants.StatusAnalyzing
	s.store.Update(doc.ID, store.Patch{Status: &st})
	s.logger.Info("analysis.doc.start", "doc_id", doc.ID, "file", doc.Source.Name, "text_len", len(doc.Text))

	report, err := s.analyzer.AnalyzeDocument(ctx, doc.Text)
	if err != nil {
		msg := common.UserMessage(err)
		if msg == "" {
			msg = "Lỗi không xác định trong quá trình phân tích."
		}
		errSt := constants.StatusError
		empty := ""
		s.store.Update(doc.ID, store.Patch{Status: &errSt, ErrorMessage: &msg, Report: &empty})
		s.logger.Error("analysis.doc.error", "doc_id", doc.ID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return
	}

	okSt := constants.StatusSuccess
	empty := ""
	s.store.Update(doc.ID, store.Patch{Status: &okSt, Report: &report, ErrorMessage: &empty})
	s.logger.Info("analysis.doc.ok", "doc_id", doc.ID, "report_len", len(report),
		"elapsed_ms", time.Since(start).Milliseconds())
}
