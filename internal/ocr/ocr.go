// Package ocr recognizes text in scanned PDFs by rasterizing pages with
// pdftoppm and running tesseract on each page image.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Progress phases reported while a document is being recognized.
const (
	PhaseInitializing = "ocr_initializing"
	PhaseRecognizing  = "ocr_recognizing"
)

// ProgressFunc receives the phase and a normalized [0,1] completion fraction.
type ProgressFunc func(status string, fraction float64)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language, default "eng"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit
}

type Extractor struct {
	cfg      Config
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, lookPath: exec.LookPath, logger: logger}
}

// Available reports whether both external binaries resolve.
func (e *Extractor) Available() bool {
	if _, err := e.lookPath(e.cfg.Pdftoppm); err != nil {
		return false
	}
	if _, err := e.lookPath(e.cfg.Tesseract); err != nil {
		return false
	}
	return true
}

// RecognizePDF rasterizes the PDF bytes and OCRs every page, reporting
// progress as pages complete. All temporary artifacts are released before
// returning, on success and on failure alike.
func (e *Extractor) RecognizePDF(ctx context.Context, data []byte, onProgress func(status string, fraction float64)) (string, error) {
	start := time.Now()
	if onProgress != nil {
		onProgress(PhaseInitializing, 0)
	}

	tmpDir, err := os.MkdirTemp("", "pd-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr workspace: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr workspace cleanup failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	in := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return "", fmt.Errorf("ocr write input: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}

	if onProgress != nil {
		onProgress(PhaseRecognizing, 0)
	}

	var b strings.Builder
	for i, img := range matches {
		txt, err := e.tesseractPage(ctx, img)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
		if onProgress != nil {
			onProgress(PhaseRecognizing, float64(i+1)/float64(len(matches)))
		}
	}

	e.logger.Info("ocr.recognize.ok",
		"pages", len(matches),
		"lang", e.cfg.Lang,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}

func (e *Extractor) tesseractPage(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
