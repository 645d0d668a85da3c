package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/constants"
)

func doc(id string) Document {
	return Document{
		ID:     id,
		Source: SourceFile{Name: id + ".txt"},
		Status: constants.StatusParsing,
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Add(doc("file-0"), doc("file-1"))
	s.Add(doc("file-2"))

	docs := s.List()
	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, fmt.Sprintf("file-%d", i), d.ID)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := New()
	s.Add(doc("file-0"))

	text := "Hello world"
	st := constants.StatusPending
	require.True(t, s.Update("file-0", Patch{Text: &text, Status: &st}))

	d, ok := s.Get("file-0")
	require.True(t, ok)
	assert.Equal(t, "Hello world", d.Text)
	assert.Equal(t, constants.StatusPending, d.Status)
	assert.Equal(t, "file-0.txt", d.Source.Name)
}

func TestUpdateMissingIDIsNoOp(t *testing.T) {
	s := New()
	s.Add(doc("file-0"), doc("file-1"))

	st := constants.StatusSuccess
	assert.False(t, s.Update("missing-id", Patch{Status: &st}))

	docs := s.List()
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, constants.StatusParsing, d.Status)
	}
}

func TestUpdateProgressAndClear(t *testing.T) {
	s := New()
	s.Add(doc("file-0"))

	p := 42
	st := constants.StatusOCR
	s.Update("file-0", Patch{Status: &st, Progress: &p})
	d, _ := s.Get("file-0")
	require.NotNil(t, d.Progress)
	assert.Equal(t, 42, *d.Progress)

	pend := constants.StatusPending
	s.Update("file-0", Patch{Status: &pend, ClearProgress: true})
	d, _ = s.Get("file-0")
	assert.Nil(t, d.Progress)
}

func TestResetClearsCollection(t *testing.T) {
	s := New()
	s.Add(doc("file-0"), doc("file-1"))
	s.Reset()
	assert.Equal(t, 0, s.Len())

	// Late updates directed at cleared records must no-op, not resurrect.
	st := constants.StatusSuccess
	assert.False(t, s.Update("file-0", Patch{Status: &st}))
	assert.Equal(t, 0, s.Len())
}

func TestConcurrentUpdatesToDifferentRecords(t *testing.T) {
	s := New()
	const n = 50
	for i := 0; i < n; i++ {
		s.Add(doc(fmt.Sprintf("file-%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("text-%d", i)
			st := constants.StatusPending
			s.Update(fmt.Sprintf("file-%d", i), Patch{Text: &text, Status: &st})
		}(i)
	}
	wg.Wait()

	for i, d := range s.List() {
		assert.Equal(t, fmt.Sprintf("text-%d", i), d.Text)
		assert.Equal(t, constants.StatusPending, d.Status)
	}
}
