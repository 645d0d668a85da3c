package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/export"
	"github.com/paperdesk/paperdesk/internal/report"
)

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

func (s *Server) handleExportTXT(c *gin.Context) {
	docs := s.successfulDocs()
	if len(docs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "không có báo cáo nào để xuất"})
		return
	}
	attachment(c, export.TXTFilename(time.Now()), "text/plain; charset=utf-8", export.AllTXT(docs))
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	docs := s.successfulDocs()
	body, err := export.AllXLSX(docs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "không có báo cáo nào để xuất"})
		return
	}
	attachment(c, export.XLSXFilename(time.Now()),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
}

// handleExportBibTeX extracts the APA citation from every successful report
// and converts the set to a BibTeX library.
func (s *Server) handleExportBibTeX(c *gin.Context) {
	var citations []string
	for _, d := range s.successfulDocs() {
		if cite := report.APACitation(d.Report); cite != "" {
			citations = append(citations, cite)
		}
	}
	if len(citations) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy trích dẫn APA nào để xuất."})
		return
	}

	body, err := s.synth.ConvertToBibTeX(c.Request.Context(), citations)
	if err != nil {
		respondAppError(c, err)
		return
	}
	attachment(c, export.BibTeXFilename(time.Now()), "application/x-bibtex; charset=utf-8", []byte(body))
}

// handleExportMatrix renders the most recently generated matrix.
func (s *Server) handleExportMatrix(c *gin.Context) {
	s.mu.Lock()
	rows := s.matrix
	s.mu.Unlock()
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "chưa có ma trận nào được tạo"})
		return
	}

	body, err := export.MatrixXLSX(rows, s.Columns())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, export.MatrixFilename(time.Now()),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
}
