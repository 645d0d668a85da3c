// Package ai talks to Gemini. One client serves all four operations: the
// per-document academic audit, the collection-level bibliometric synthesis,
// the structured synthesis matrix, and APA-to-BibTeX conversion.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/paperdesk/paperdesk/internal/common"
)

// User-facing failure messages.
const (
	MsgRateLimited     = "Lỗi giới hạn (Quota): Bạn đã gửi quá nhiều yêu cầu trong một khoảng thời gian ngắn. Vui lòng đợi và thử lại sau."
	MsgAnalysisFailed  = "Không thể phân tích tài liệu. Vui lòng kiểm tra nội dung tài liệu và thử lại."
	MsgSynthesisFailed = "Không thể thực hiện phân tích tổng hợp. Vui lòng thử lại."
	MsgMatrixParse     = "Không thể phân tích cú pháp JSON từ phản hồi của AI. Dữ liệu có thể không hợp lệ."
	MsgMatrixFailed    = "Không thể tạo ma trận tổng quan. Vui lòng thử lại."
	MsgBibTeXFailed    = "Không thể chuyển đổi trích dẫn sang BibTeX. Vui lòng thử lại."
)

type Config struct {
	APIKey         string
	AnalysisModel  string // per-document audits and BibTeX conversion
	SynthesisModel string // collection-level synthesis and the matrix
}

// generator is the model-call seam; tests replace it.
type generator interface {
	Generate(ctx context.Context, model, system, content string, jsonMode bool) (string, error)
}

type Client struct {
	cfg Config
	gen generator
	log *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "gemini-2.5-flash"
	}
	if cfg.SynthesisModel == "" {
		cfg.SynthesisModel = "gemini-2.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, gen: &genaiGenerator{client: gc}, log: logger}, nil
}

func (c *Client) Close() error {
	if g, ok := c.gen.(*genaiGenerator); ok {
		return g.client.Close()
	}
	return nil
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) Generate(ctx context.Context, model, system, content string, jsonMode bool) (string, error) {
	m := g.client.GenerativeModel(model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if jsonMode {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(content))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text parts in gemini response")
	}
	return strings.TrimSpace(b.String()), nil
}

// isRateLimited detects quota exhaustion from the error text. The genai SDK
// surfaces googleapi errors whose messages carry the HTTP status and the
// RESOURCE_EXHAUSTED status string.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "quota")
}

func classifyAnalysisError(err error) error {
	if isRateLimited(err) {
		return common.NewAppError("ANALYSIS_RATE_LIMITED", MsgRateLimited, common.ErrAnalysisRateLimited, err)
	}
	return common.NewAppError("ANALYSIS_FAILED", MsgAnalysisFailed, common.ErrAnalysisFailed, err)
}

// AnalyzeDocument produces the 13-section academic audit report for one
// document's text.
func (c *Client) AnalyzeDocument(ctx context.Context, text string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("ai.analyze.start", "req_id", rid, "model", c.cfg.AnalysisModel, "text_len", len(text))

	content := fmt.Sprintf("<document_to_analyze>\n%s\n</document_to_analyze>", text)
	report, err := c.gen.Generate(ctx, c.cfg.AnalysisModel, academicAnalysisPrompt, content, false)
	if err != nil {
		c.log.Error("ai.analyze.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", classifyAnalysisError(err)
	}

	c.log.Info("ai.analyze.ok", "req_id", rid, "report_len", len(report),
		"elapsed_ms", time.Since(start).Milliseconds())
	return report, nil
}

// AnalyzeBibliometrics synthesizes trends across the whole collection toward
// the user's stated goal. documentCollection is the pre-joined corpus text.
func (c *Client) AnalyzeBibliometrics(ctx context.Context, documentCollection, userGoal string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("ai.bibliometrics.start", "req_id", rid, "model", c.cfg.SynthesisModel,
		"collection_len", len(documentCollection), "goal_len", len(userGoal))

	content := fmt.Sprintf("<user_goal>\n%s\n</user_goal>\n\n<document_collection>\n%s\n</document_collection>\n",
		userGoal, documentCollection)
	out, err := c.gen.Generate(ctx, c.cfg.SynthesisModel, bibliometricAnalysisPrompt, content, false)
	if err != nil {
		c.log.Error("ai.bibliometrics.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if isRateLimited(err) {
			return "", common.NewAppError("ANALYSIS_RATE_LIMITED", MsgRateLimited, common.ErrAnalysisRateLimited, err)
		}
		return "", common.NewAppError("SYNTHESIS_FAILED", MsgSynthesisFailed, common.ErrAnalysisFailed, err)
	}

	c.log.Info("ai.bibliometrics.ok", "req_id", rid, "report_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// GenerateMatrix builds the synthesis matrix from the per-document reports.
// Only enabled columns participate; the reply is validated against the same
// schema the model was given.
func (c *Client) GenerateMatrix(ctx context.Context, reports []string, columns []MatrixColumn) ([]MatrixRow, error) {
	rid := uuid.New().String()
	start := time.Now()

	enabled := EnabledColumns(columns)
	if len(enabled) == 0 {
		return nil, common.NewAppError("MATRIX_FAILED", MsgMatrixFailed, common.ErrMatrixParse,
			fmt.Errorf("no enabled columns"))
	}
	rowSchema := BuildMatrixSchema(enabled)
	schemaJSON, err := json.MarshalIndent(rowSchema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal matrix schema: %w", err)
	}

	c.log.Info("ai.matrix.start", "req_id", rid, "model", c.cfg.SynthesisModel,
		"reports", len(reports), "columns", len(enabled))

	system := buildMatrixPrompt(string(schemaJSON), enabled)
	content := fmt.Sprintf("<report_collection>%s</report_collection>", strings.Join(reports, "\n\n"))
	raw, err := c.gen.Generate(ctx, c.cfg.SynthesisModel, system, content, true)
	if err != nil {
		c.log.Error("ai.matrix.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if isRateLimited(err) {
			return nil, common.NewAppError("ANALYSIS_RATE_LIMITED", MsgRateLimited, common.ErrAnalysisRateLimited, err)
		}
		return nil, common.NewAppError("MATRIX_FAILED", MsgMatrixFailed, common.ErrMatrixParse, err)
	}

	rows, err := decodeMatrix(raw, rowSchema)
	if err != nil {
		c.log.Error("ai.matrix.decode_error", "req_id", rid, "error", err, "raw_len", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("MATRIX_PARSE", MsgMatrixParse, common.ErrMatrixParse, err)
	}

	c.log.Info("ai.matrix.ok", "req_id", rid, "rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds())
	return rows, nil
}

// decodeMatrix parses the model reply as a JSON array of rows and validates
// each row against the schema.
func decodeMatrix(raw string, rowSchema map[string]any) ([]MatrixRow, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("response is not a json array")
	}
	rows := make([]MatrixRow, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is not a json object", i)
		}
		rows = append(rows, MatrixRow(obj))
	}
	if err := validateRows(rowSchema, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ConvertToBibTeX turns APA 7th citations into BibTeX entries, one per
// citation.
func (c *Client) ConvertToBibTeX(ctx context.Context, citations []string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("ai.bibtex.start", "req_id", rid, "model", c.cfg.AnalysisModel, "citations", len(citations))

	content := fmt.Sprintf("<apa_citations>\n%s\n</apa_citations>", strings.Join(citations, "\n---\n"))
	out, err := c.gen.Generate(ctx, c.cfg.AnalysisModel, bibtexConversionPrompt, content, false)
	if err != nil {
		c.log.Error("ai.bibtex.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if isRateLimited(err) {
			return "", common.NewAppError("ANALYSIS_RATE_LIMITED", MsgRateLimited, common.ErrAnalysisRateLimited, err)
		}
		return "", common.NewAppError("BIBTEX_FAILED", MsgBibTeXFailed, common.ErrConversionFailed, err)
	}

	c.log.Info("ai.bibtex.ok", "req_id", rid, "out_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
