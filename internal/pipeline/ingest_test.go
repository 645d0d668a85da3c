package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/store"
)

type fakeExtractor struct {
	mu      sync.Mutex
	block   chan struct{}
	failOn  map[string]error
	byName  map[string]string
	emitOCR bool
}

func (f *fakeExtractor) Extract(_ context.Context, file extract.File, onProgress extract.ProgressFunc) (string, error) {
	if f.block != nil {
		<-f.block
	}
	if f.emitOCR && onProgress != nil {
		onProgress("ocr_initializing", 0)
		onProgress("ocr_recognizing", 0.336)
		onProgress("ocr_recognizing", 1)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[file.Name]; ok {
		return "", err
	}
	if text, ok := f.byName[file.Name]; ok {
		return text, nil
	}
	return "text of " + file.Name, nil
}

func TestAddFilesRegistersAllBeforeExtraction(t *testing.T) {
	st := store.New()
	block := make(chan struct{})
	ing := NewIngestor(st, &fakeExtractor{block: block}, testLogger())

	docs := ing.AddFiles(context.Background(), []extract.File{
		{Name: "a.txt", MIME: "text/plain"},
		{Name: "b.txt", MIME: "text/plain"},
		{Name: "c.txt", MIME: "text/plain"},
	})

	// All records visible in parsing state while extraction is blocked.
	require.Len(t, docs, 3)
	listed := st.List()
	require.Len(t, listed, 3)
	for i, d := range listed {
		assert.Equal(t, docs[i].ID, d.ID)
		assert.Equal(t, constants.StatusParsing, d.Status)
	}

	close(block)
	ing.Wait()
	for _, d := range st.List() {
		assert.Equal(t, constants.StatusPending, d.Status)
		assert.NotEmpty(t, d.Text)
	}
}

func TestAddFilesAssignsMonotonicIDs(t *testing.T) {
	st := store.New()
	ing := NewIngestor(st, &fakeExtractor{}, testLogger())

	first := ing.AddFiles(context.Background(), []extract.File{{Name: "a.txt", MIME: "text/plain"}})
	ing.Wait()
	st.Reset()
	second := ing.AddFiles(context.Background(), []extract.File{{Name: "b.txt", MIME: "text/plain"}})
	ing.Wait()

	assert.Equal(t, "file-0", first[0].ID)
	// IDs survive a reset; they are never reused.
	assert.Equal(t, "file-1", second[0].ID)
}

func TestExtractFailureMarksDocument(t *testing.T) {
	st := store.New()
	appErr := common.NewAppError("UNSUPPORTED_FILE_TYPE", "Loại tệp không được hỗ trợ.", common.ErrUnsupportedFileType, nil)
	ing := NewIngestor(st, &fakeExtractor{failOn: map[string]error{"bad.xyz": appErr}}, testLogger())

	ing.AddFiles(context.Background(), []extract.File{
		{Name: "bad.xyz"},
		{Name: "good.txt", MIME: "text/plain"},
	})
	ing.Wait()

	docs := st.List()
	assert.Equal(t, constants.StatusError, docs[0].Status)
	assert.Equal(t, "Loại tệp không được hỗ trợ.", docs[0].ErrorMessage)
	assert.Nil(t, docs[0].Progress)
	assert.Equal(t, constants.StatusPending, docs[1].Status)
}

func TestOCRProgressSurfacesAsPercent(t *testing.T) {
	st := store.New()
	fx := &fakeExtractor{emitOCR: true, byName: map[string]string{"scan.pdf": "recognized"}}

	var observed []store.Document
	// Wrap the extractor so we can snapshot the record after each event.
	ing := NewIngestor(st, extractFunc(func(ctx context.Context, f extract.File, onProgress extract.ProgressFunc) (string, error) {
		return fx.Extract(ctx, f, func(status string, fraction float64) {
			onProgress(status, fraction)
			if d, ok := st.Get("file-0"); ok {
				observed = append(observed, d)
			}
		})
	}), testLogger())

	ing.AddFiles(context.Background(), []extract.File{{Name: "scan.pdf", MIME: "application/pdf"}})
	ing.Wait()

	require.Len(t, observed, 3)
	for _, d := range observed {
		assert.Equal(t, constants.StatusOCR, d.Status)
		require.NotNil(t, d.Progress)
	}
	assert.Equal(t, 0, *observed[0].Progress)
	// 0.336 rounds to 34 percent.
	assert.Equal(t, 34, *observed[1].Progress)
	assert.Equal(t, 100, *observed[2].Progress)

	final, ok := st.Get("file-0")
	require.True(t, ok)
	assert.Equal(t, constants.StatusPending, final.Status)
	assert.Equal(t, "recognized", final.Text)
	assert.Nil(t, final.Progress)
}

type extractFunc func(ctx context.Context, f extract.File, onProgress extract.ProgressFunc) (string, error)

func (fn extractFunc) Extract(ctx context.Context, f extract.File, onProgress extract.ProgressFunc) (string, error) {
	return fn(ctx, f, onProgress)
}

func TestNonOCRProgressIsIgnored(t *testing.T) {
	st := store.New()
	ing := NewIngestor(st, extractFunc(func(_ context.Context, f extract.File, onProgress extract.ProgressFunc) (string, error) {
		onProgress("warming_up", 0.5)
		return "ok", nil
	}), testLogger())

	ing.AddFiles(context.Background(), []extract.File{{Name: "a.txt", MIME: "text/plain"}})
	ing.Wait()

	d, ok := st.Get("file-0")
	require.True(t, ok)
	assert.Equal(t, constants.StatusPending, d.Status)
	assert.Nil(t, d.Progress)
}

func TestGenericExtractErrorGetsFallbackMessage(t *testing.T) {
	st := store.New()
	ing := NewIngestor(st, &fakeExtractor{failOn: map[string]error{"a.txt": errors.New("io failure")}}, testLogger())

	ing.AddFiles(context.Background(), []extract.File{{Name: "a.txt", MIME: "text/plain"}})
	ing.Wait()

	d, _ := st.Get("file-0")
	assert.Equal(t, constants.StatusError, d.Status)
	assert.Equal(t, "io failure", d.ErrorMessage)
}
