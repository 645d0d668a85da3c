// paperdeskd is the HTTP daemon: upload research documents, run AI analysis,
// and download the synthesized exports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paperdesk/paperdesk/internal/ai"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/ocr"
	"github.com/paperdesk/paperdesk/internal/pipeline"
	"github.com/paperdesk/paperdesk/internal/server"
	"github.com/paperdesk/paperdesk/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ai.NewClient(ctx, ai.Config{
		APIKey:         cfg.AI.APIKey,
		AnalysisModel:  cfg.AI.AnalysisModel,
		SynthesisModel: cfg.AI.SynthesisModel,
	}, logger)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ocrEngine := ocr.NewExtractor(ocr.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	if !ocrEngine.Available() {
		logger.Warn("ocr binaries not found, scanned pdfs will be rejected",
			"pdftoppm", cfg.OCR.Pdftoppm, "tesseract", cfg.OCR.Tesseract)
	}

	st := store.New()
	extractor := extract.NewExtractor(ocrEngine, logger)
	ingestor := pipeline.NewIngestor(st, extractor, logger)
	sequencer := pipeline.NewSequencer(st, client, cfg.AI.Pacing, logger)

	srv := server.New(server.Config{MaxUploadBytes: cfg.Server.MaxUploadBytes},
		st, ingestor, sequencer, client, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	ingestor.Wait()
	logger.Info("stopped")
}
