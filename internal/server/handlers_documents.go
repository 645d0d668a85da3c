package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/ai"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/pipeline"
	"github.com/paperdesk/paperdesk/internal/store"
)

// documentView is the wire shape of one document record.
type documentView struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
	Report   string `json:"report,omitempty"`
}

func toView(d store.Document) documentView {
	return documentView{
		ID:       d.ID,
		FileName: d.Source.Name,
		Status:   string(d.Status),
		Progress: d.Progress,
		Error:    d.ErrorMessage,
		Report:   d.Report,
	}
}

// handleUpload accepts a multipart form with one or more "files" parts,
// registers them, and returns the initial records. Extraction continues in
// the background; clients poll GET /api/documents. Once started, extraction
// runs to completion or failure, so it must not inherit the request context.
func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	parts := form.File["files"]
	if len(parts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]extract.File, 0, len(parts))
	for _, fh := range parts {
		if fh.Size > s.cfg.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large: " + fh.Filename})
			return
		}
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file: " + fh.Filename})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file: " + fh.Filename})
			return
		}
		files = append(files, extract.File{
			Name: fh.Filename,
			MIME: fh.Header.Get("Content-Type"),
			Data: data,
		})
	}

	docs := s.ingestor.AddFiles(context.Background(), files)
	views := make([]documentView, len(docs))
	for i, d := range docs {
		views[i] = toView(d)
	}
	c.JSON(http.StatusAccepted, gin.H{"documents": views})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs := s.store.List()
	views := make([]documentView, len(docs))
	for i, d := range docs {
		views[i] = toView(d)
	}
	c.JSON(http.StatusOK, gin.H{
		"documents": views,
		"analysis": gin.H{
			"running":  s.sequencer.Running(),
			"progress": s.sequencer.Progress(),
		},
	})
}

// handleReset clears all documents and derived state, including the matrix
// columns, back to defaults. In-flight work no-ops by identifier.
func (s *Server) handleReset(c *gin.Context) {
	s.store.Reset()
	s.mu.Lock()
	s.columns = ai.DefaultMatrixColumns()
	s.matrix = nil
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// handleAnalyze starts a background batch over all pending documents. The
// batch outlives the request, so it runs off a fresh context.
func (s *Server) handleAnalyze(c *gin.Context) {
	if err := s.sequencer.StartBatch(context.Background()); err != nil {
		if errors.Is(err, pipeline.ErrAnalysisBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

// handleRetry re-analyzes one document synchronously.
func (s *Server) handleRetry(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err := s.sequencer.Retry(c.Request.Context(), id); err != nil {
		if errors.Is(err, pipeline.ErrAnalysisBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already running"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, _ := s.store.Get(id)
	c.JSON(http.StatusOK, toView(doc))
}

// successfulDocs are the documents eligible for synthesis and export.
func (s *Server) successfulDocs() []store.Document {
	var out []store.Document
	for _, d := range s.store.List() {
		if d.Status == constants.StatusSuccess {
			out = append(out, d)
		}
	}
	return out
}

// respondAppError maps a pipeline/AI error to a status code and the
// user-facing message.
func respondAppError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrAnalysisRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrMatrixParse):
		status = http.StatusBadGateway
	case errors.Is(err, common.ErrAnalysisFailed), errors.Is(err, common.ErrConversionFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": common.UserMessage(err)})
}
