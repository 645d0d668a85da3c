// paperdesk is the batch CLI: analyze a set of research documents from the
// command line and write the combined exports to a directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/constants"
	"github.com/paperdesk/paperdesk/internal/ai"
	"github.com/paperdesk/paperdesk/internal/common"
	"github.com/paperdesk/paperdesk/internal/export"
	"github.com/paperdesk/paperdesk/internal/extract"
	"github.com/paperdesk/paperdesk/internal/ocr"
	"github.com/paperdesk/paperdesk/internal/pipeline"
	"github.com/paperdesk/paperdesk/internal/report"
	"github.com/paperdesk/paperdesk/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paperdesk",
		Short:         "Analyze research documents with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		outDir string
		bibtex bool
		matrix bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file|dir> [...]",
		Short: "Extract, analyze, and export reports for the given documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args, outDir, bibtex, matrix)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for exported files")
	cmd.Flags().BoolVar(&bibtex, "bibtex", false, "also export the citation library as BibTeX")
	cmd.Flags().BoolVar(&matrix, "matrix", false, "also generate and export the synthesis matrix")
	return cmd
}

func runAnalyze(parent context.Context, args []string, outDir string, bibtex, matrix bool) error {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found")
	}

	client, err := ai.NewClient(ctx, ai.Config{
		APIKey:         cfg.AI.APIKey,
		AnalysisModel:  cfg.AI.AnalysisModel,
		SynthesisModel: cfg.AI.SynthesisModel,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ocrEngine := ocr.NewExtractor(ocr.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	st := store.New()
	ingestor := pipeline.NewIngestor(st, extract.NewExtractor(ocrEngine, logger), logger)
	sequencer := pipeline.NewSequencer(st, client, cfg.AI.Pacing, logger)

	fmt.Printf("Extracting %d document(s)...\n", len(files))
	ingestor.AddFiles(ctx, files)
	ingestor.Wait()

	for _, d := range st.List() {
		if d.Status == constants.StatusError {
			fmt.Printf("  SKIP %s: %s\n", d.Source.Name, d.ErrorMessage)
		}
	}

	fmt.Println("Analyzing...")
	if err := sequencer.RunBatch(ctx); err != nil {
		return err
	}

	var success []store.Document
	for _, d := range st.List() {
		switch d.Status {
		case constants.StatusSuccess:
			fmt.Printf("  OK   %s\n", d.Source.Name)
			success = append(success, d)
		case constants.StatusError:
			fmt.Printf("  FAIL %s: %s\n", d.Source.Name, d.ErrorMessage)
		}
	}
	if len(success) == 0 {
		return fmt.Errorf("no documents were analyzed successfully")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	now := time.Now()

	txtPath := filepath.Join(outDir, export.TXTFilename(now))
	if err := os.WriteFile(txtPath, export.AllTXT(success), 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", txtPath)

	xlsxBytes, err := export.AllXLSX(success)
	if err != nil {
		return err
	}
	xlsxPath := filepath.Join(outDir, export.XLSXFilename(now))
	if err := os.WriteFile(xlsxPath, xlsxBytes, 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", xlsxPath)

	if bibtex {
		if err := exportBibTeX(ctx, client, success, outDir, now); err != nil {
			return err
		}
	}
	if matrix {
		if err := exportMatrix(ctx, client, success, outDir, now); err != nil {
			return err
		}
	}
	return nil
}

func exportBibTeX(ctx context.Context, client *ai.Client, docs []store.Document, outDir string, now time.Time) error {
	var citations []string
	for _, d := range docs {
		if cite := report.APACitation(d.Report); cite != "" {
			citations = append(citations, cite)
		}
	}
	if len(citations) == 0 {
		fmt.Println("No APA citations found, skipping BibTeX export")
		return nil
	}
	body, err := client.ConvertToBibTeX(ctx, citations)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, export.BibTeXFilename(now))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}

func exportMatrix(ctx context.Context, client *ai.Client, docs []store.Document, outDir string, now time.Time) error {
	columns := ai.DefaultMatrixColumns()
	reports := make([]string, 0, len(docs))
	for _, d := range docs {
		reports = append(reports, fmt.Sprintf("--- START REPORT: %s ---\n\n%s\n\n--- END REPORT ---", d.Source.Name, d.Report))
	}
	rows, err := client.GenerateMatrix(ctx, reports, columns)
	if err != nil {
		return err
	}
	body, err := export.MatrixXLSX(rows, columns)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, export.MatrixFilename(now))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}

// collectFiles expands the arguments into uploadable files: directories are
// scanned one level deep for supported extensions.
func collectFiles(args []string) ([]extract.File, error) {
	var out []extract.File
	add := func(path string) error {
		if constants.MapExtToFormat(filepath.Ext(path)) == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, extract.File{Name: filepath.Base(path), Data: data})
		return nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(arg); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := add(filepath.Join(arg, e.Name())); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
