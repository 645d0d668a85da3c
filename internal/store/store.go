// Package store holds the in-memory collection of uploaded documents and
// their lifecycle state. Updates are keyed by identifier and applied with a
// read-modify-publish copy so interleaved updates to different records never
// clobber each other.
package store

import (
	"sync"

	"github.com/paperdesk/paperdesk/constants"
)

// SourceFile is the opaque handle to the original uploaded bytes and name.
type SourceFile struct {
	Name string
	MIME string
	Data []byte
}

// Document is one uploaded file and everything derived from it.
type Document struct {
	ID           string
	Source       SourceFile
	Text         string
	Status       constants.DocumentStatus
	Report       string
	ErrorMessage string
	// Progress is the OCR completion percentage (0-100); nil outside the
	// OCR sub-state.
	Progress *int
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Text          *string
	Status        *constants.DocumentStatus
	Report        *string
	ErrorMessage  *string
	Progress      *int
	ClearProgress bool
}

// Store is the ordered document collection. Insertion order is preserved and
// is the only ordering guarantee.
type Store struct {
	mu   sync.RWMutex
	docs []Document
}

func New() *Store {
	return &Store{}
}

// Add appends records to the collection.
func (s *Store) Add(docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Document, 0, len(s.docs)+len(docs))
	next = append(next, s.docs...)
	next = append(next, docs...)
	s.docs = next
}

// Update merges the patch into the record matching id. A missing id is a
// no-op and never affects other records; it reports whether a record matched.
func (s *Store) Update(id string, p Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID != id {
			continue
		}
		next := make([]Document, len(s.docs))
		copy(next, s.docs)
		d := &next[i]
		if p.Text != nil {
			d.Text = *p.Text
		}
		if p.Status != nil {
			d.Status = *p.Status
		}
		if p.Report != nil {
			d.Report = *p.Report
		}
		if p.ErrorMessage != nil {
			d.ErrorMessage = *p.ErrorMessage
		}
		if p.Progress != nil {
			v := *p.Progress
			d.Progress = &v
		}
		if p.ClearProgress {
			d.Progress = nil
		}
		s.docs = next
		return true
	}
	return false
}

// Get returns the record matching id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d, true
		}
	}
	return Document{}, false
}

// List returns a snapshot of the collection in insertion order.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Reset clears the collection. Late updates from in-flight work no-op by id.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
}
