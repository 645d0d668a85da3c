package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/store"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	failOn  map[string]error
	reports map[string]string

	inFlight    int
	maxInFlight int
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if err, ok := f.failOn[text]; ok {
		return "", err
	}
	if r, ok := f.reports[text]; ok {
		return r, nil
	}
	return "report for " + text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func seedStore(texts ...string) *store.Store {
	st := store.New()
	for i, text := range texts {
		st.Add(store.Document{
			ID:     fmt.Sprintf("file-%d", i),
			Source: store.SourceFile{Name: fmt.Sprintf("doc%d.pdf", i)},
			Text:   text,
			Status: constants.StatusPending,
		})
	}
	return st
}

func newTestSequencer(st *store.Store, an Analyzer) (*Sequencer, *[]time.Duration) {
	s := NewSequencer(st, an, 4*time.Second, testLogger())
	var sleeps []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }
	return s, &sleeps
}

func TestRunBatchAnalyzesInOrderAndContinuesPastFailures(t *testing.T) {
	st := seedStore("one", "two", "three")
	an := &fakeAnalyzer{failOn: map[string]error{"two": errors.New("boom")}}
	s, sleeps := newTestSequencer(st, an)

	require.NoError(t, s.RunBatch(context.Background()))

	assert.Equal(t, []string{"one", "two", "three"}, an.calls)
	// Pacing applies between documents, not after the last one.
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, *sleeps)
	assert.Equal(t, 1, an.maxInFlight)

	docs := st.List()
	assert.Equal(t, constants.StatusSuccess, docs[0].Status)
	assert.Equal(t, "report for one", docs[0].Report)
	assert.Empty(t, docs[0].ErrorMessage)

	assert.Equal(t, constants.StatusError, docs[1].Status)
	assert.Equal(t, "boom", docs[1].ErrorMessage)
	assert.Empty(t, docs[1].Report)

	assert.Equal(t, constants.StatusSuccess, docs[2].Status)
}

func TestRunBatchSkipsIneligibleDocuments(t *testing.T) {
	st := seedStore("ready")
	st.Add(
		store.Document{ID: "file-9", Text: "", Status: constants.StatusPending},
		store.Document{ID: "file-10", Text: "done already", Status: constants.StatusSuccess},
		store.Document{ID: "file-11", Text: "broken", Status: constants.StatusError},
	)
	an := &fakeAnalyzer{}
	s, sleeps := newTestSequencer(st, an)

	require.NoError(t, s.RunBatch(context.Background()))
	assert.Equal(t, []string{"ready"}, an.calls)
	assert.Empty(t, *sleeps)
}

func TestRunBatchEmptyIsNoOp(t *testing.T) {
	st := store.New()
	an := &fakeAnalyzer{}
	s, _ := newTestSequencer(st, an)

	require.NoError(t, s.RunBatch(context.Background()))
	assert.Empty(t, an.calls)
	assert.False(t, s.Running())
	assert.Nil(t, s.Progress())
}

func TestRetry(t *testing.T) {
	st := seedStore("first try")
	an := &fakeAnalyzer{}
	s, _ := newTestSequencer(st, an)

	require.NoError(t, s.Retry(context.Background(), "file-0"))
	doc, ok := st.Get("file-0")
	require.True(t, ok)
	assert.Equal(t, constants.StatusSuccess, doc.Status)
	assert.Equal(t, "report for first try", doc.Report)
}

func TestRetryMissingOrTextless(t *testing.T) {
	st := seedStore()
	st.Add(store.Document{ID: "file-0", Status: constants.StatusError})
	s, _ := newTestSequencer(st, &fakeAnalyzer{})

	assert.Error(t, s.Retry(context.Background(), "nope"))
	assert.Error(t, s.Retry(context.Background(), "file-0"))
}

func TestSingleFlight(t *testing.T) {
	st := seedStore("slow doc")
	release := make(chan struct{})
	started := make(chan struct{})
	an := &blockingAnalyzer{started: started, release: release}
	s, _ := newTestSequencer(st, an)

	done := make(chan error, 1)
	go func() { done <- s.RunBatch(context.Background()) }()
	<-started

	assert.True(t, s.Running())
	assert.ErrorIs(t, s.RunBatch(context.Background()), ErrAnalysisBusy)
	assert.ErrorIs(t, s.Retry(context.Background(), "file-0"), ErrAnalysisBusy)
	assert.ErrorIs(t, s.StartBatch(context.Background()), ErrAnalysisBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Running())
}

type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingAnalyzer) AnalyzeDocument(context.Context, string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return "report", nil
}

func TestProgressDuringBatch(t *testing.T) {
	st := seedStore("a", "b", "c")
	an := &fakeAnalyzer{}
	s := NewSequencer(st, an, time.Second, testLogger())

	var seen []BatchProgress
	s.sleep = func(context.Context, time.Duration) {
		if p := s.Progress(); p != nil {
			seen = append(seen, *p)
		}
	}

	require.NoError(t, s.RunBatch(context.Background()))
	assert.Equal(t, []BatchProgress{{Current: 1, Total: 3}, {Current: 2, Total: 3}}, seen)
	assert.Nil(t, s.Progress())
}

func TestStartBatchRunsInBackground(t *testing.T) {
	st := seedStore("a", "b")
	an := &fakeAnalyzer{}
	s, _ := newTestSequencer(st, an)

	require.NoError(t, s.StartBatch(context.Background()))
	waitUntil(t, func() bool { return !s.Running() })

	docs := st.List()
	assert.Equal(t, constants.StatusSuccess, docs[0].Status)
	assert.Equal(t, constants.StatusSuccess, docs[1].Status)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
