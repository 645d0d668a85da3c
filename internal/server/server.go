// Package server exposes the document pipeline over HTTP: uploads, status
// polling, analysis control, synthesis operations, and file exports.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/ai"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/pipeline"
	"github.com/paperdesk/paperdesk/internal/store"
)

// Synthesizer covers the collection-level AI operations.
type Synthesizer interface {
	AnalyzeBibliometrics(ctx context.Context, documentCollection, userGoal string) (string, error)
	GenerateMatrix(ctx context.Context, reports []string, columns []ai.MatrixColumn) ([]ai.MatrixRow, error)
	ConvertToBibTeX(ctx context.Context, citations []string) (string, error)
}

// Ingestor registers uploads; pipeline.Ingestor in production.
type Ingestor interface {
	AddFiles(ctx context.Context, files []extract.File) []store.Document
}

// Sequencer drives analysis runs; pipeline.Sequencer in production.
type Sequencer interface {
	StartBatch(ctx context.Context) error
	Retry(ctx context.Context, id string) error
	Running() bool
	Progress() *pipeline.BatchProgress
}

type Config struct {
	MaxUploadBytes int64
}

type Server struct {
	cfg       Config
	store     *store.Store
	ingestor  Ingestor
	sequencer Sequencer
	synth     Synthesizer
	logger    *slog.Logger
	router    *gin.Engine

	mu      sync.Mutex
	columns []ai.MatrixColumn
	matrix  []ai.MatrixRow
}

func New(cfg Config, st *store.Store, ing Ingestor, seq Sequencer, synth Synthesizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	s := &Server{
		cfg:       cfg,
		store:     st,
		ingestor:  ing,
		sequencer: seq,
		synth:     synth,
		logger:    logger,
		router:    r,
		columns:   ai.DefaultMatrixColumns(),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router for net/http servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := s.router.Group("/api")
	api.POST("/documents", s.handleUpload)
	api.GET("/documents", s.handleListDocuments)
	api.DELETE("/documents", s.handleReset)
	api.POST("/documents/:id/retry", s.handleRetry)
	api.POST("/analyze", s.handleAnalyze)

	api.GET("/matrix/columns", s.handleGetColumns)
	api.PUT("/matrix/columns", s.handlePutColumns)
	api.POST("/matrix", s.handleGenerateMatrix)
	api.POST("/bibliometrics", s.handleBibliometrics)

	api.GET("/export/txt", s.handleExportTXT)
	api.GET("/export/xlsx", s.handleExportXLSX)
	api.GET("/export/bib", s.handleExportBibTeX)
	api.POST("/export/matrix", s.handleExportMatrix)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
