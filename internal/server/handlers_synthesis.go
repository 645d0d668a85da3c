package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/ai"
	"github.com/paperdesk/paperdesk/internal/report"
)

func (s *Server) handleGetColumns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"columns": s.Columns()})
}

func (s *Server) handlePutColumns(c *gin.Context) {
	var req struct {
		Columns []ai.MatrixColumn `json:"columns"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Columns) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one column is required"})
		return
	}
	for _, col := range req.Columns {
		if col.ID == "" || col.Header == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "column id and header are required"})
			return
		}
	}
	s.setColumns(req.Columns)
	c.JSON(http.StatusOK, gin.H{"columns": s.Columns()})
}

// handleGenerateMatrix builds the synthesis matrix over every successful
// document's report. A column set in the body overrides the stored one for
// this run and is persisted, mirroring the edit-then-generate flow.
func (s *Server) handleGenerateMatrix(c *gin.Context) {
	var req struct {
		Columns []ai.MatrixColumn `json:"columns"`
	}
	// An empty body is a plain generate; chunked requests carry no length
	// header, so bind and treat EOF as no override.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	columns := s.Columns()
	if len(req.Columns) > 0 {
		columns = req.Columns
		s.setColumns(columns)
	}

	docs := s.successfulDocs()
	if len(docs) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "chưa có báo cáo phân tích nào"})
		return
	}
	reports := make([]string, 0, len(docs))
	for _, d := range docs {
		reports = append(reports, fmt.Sprintf("--- START REPORT: %s ---\n\n%s\n\n--- END REPORT ---", d.Source.Name, d.Report))
	}

	rows, err := s.synth.GenerateMatrix(c.Request.Context(), reports, columns)
	if err != nil {
		respondAppError(c, err)
		return
	}

	s.mu.Lock()
	s.matrix = rows
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"matrix": rows, "columns": ai.EnabledColumns(columns)})
}

// handleBibliometrics synthesizes trends across the collection toward the
// goal in the request body, returning the prose with chart blocks split out.
func (s *Server) handleBibliometrics(c *gin.Context) {
	var req struct {
		Goal string `json:"goal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Goal) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal is required"})
		return
	}

	docs := s.successfulDocs()
	if len(docs) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "chưa có tài liệu nào được phân tích thành công"})
		return
	}
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, fmt.Sprintf("--- START DOCUMENT: %s ---\n\n%s\n\n--- END DOCUMENT ---", d.Source.Name, d.Text))
	}

	raw, err := s.synth.AnalyzeBibliometrics(c.Request.Context(), strings.Join(parts, "\n\n"), req.Goal)
	if err != nil {
		respondAppError(c, err)
		return
	}

	prose, charts := report.ExtractChartBlocks(raw)
	c.JSON(http.StatusOK, gin.H{"report": prose, "charts": charts})
}
