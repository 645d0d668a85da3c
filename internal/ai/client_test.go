package ai

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/internal/common"
)

type fakeGen struct {
	reply string
	err   error

	model    string
	system   string
	content  string
	jsonMode bool
}

func (f *fakeGen) Generate(_ context.Context, model, system, content string, jsonMode bool) (string, error) {
	f.model, f.system, f.content, f.jsonMode = model, system, content, jsonMode
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestClient(gen generator) *Client {
	return &Client{
		cfg: Config{AnalysisModel: "gemini-2.5-flash", SynthesisModel: "gemini-2.5-pro"},
		gen: gen,
		log: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func TestAnalyzeDocument(t *testing.T) {
	gen := &fakeGen{reply: "**1. Tên bài báo**\nA Study"}
	c := newTestClient(gen)

	report, err := c.AnalyzeDocument(context.Background(), "document body")
	require.NoError(t, err)
	assert.Equal(t, "**1. Tên bài báo**\nA Study", report)

	assert.Equal(t, "gemini-2.5-flash", gen.model)
	assert.Equal(t, academicAnalysisPrompt, gen.system)
	assert.Equal(t, "<document_to_analyze>\ndocument body\n</document_to_analyze>", gen.content)
	assert.False(t, gen.jsonMode)
}

func TestAnalyzeDocumentRateLimited(t *testing.T) {
	for _, msg := range []string{
		"googleapi: Error 429: too many requests",
		"rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED",
		"generativelanguage: quota exceeded for model",
	} {
		c := newTestClient(&fakeGen{err: errors.New(msg)})
		_, err := c.AnalyzeDocument(context.Background(), "text")
		require.Error(t, err, msg)
		assert.True(t, errors.Is(err, common.ErrAnalysisRateLimited), msg)
		assert.Equal(t, MsgRateLimited, common.UserMessage(err))
	}
}

func TestAnalyzeDocumentGenericFailure(t *testing.T) {
	c := newTestClient(&fakeGen{err: errors.New("connection reset")})
	_, err := c.AnalyzeDocument(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAnalysisFailed))
	assert.Equal(t, MsgAnalysisFailed, common.UserMessage(err))
}

func TestAnalyzeBibliometricsWrapsGoalAndCollection(t *testing.T) {
	gen := &fakeGen{reply: "## Phân tích"}
	c := newTestClient(gen)

	out, err := c.AnalyzeBibliometrics(context.Background(), "corpus text", "find trends")
	require.NoError(t, err)
	assert.Equal(t, "## Phân tích", out)

	assert.Equal(t, "gemini-2.5-pro", gen.model)
	assert.Contains(t, gen.content, "<user_goal>\nfind trends\n</user_goal>")
	assert.Contains(t, gen.content, "<document_collection>\ncorpus text\n</document_collection>")
}

var matrixColumns = []MatrixColumn{
	{ID: "stt", Header: "STT", Prompt: "Số thứ tự", Enabled: true},
	{ID: "apa7", Header: "Trích dẫn", Prompt: "Trích dẫn APA 7", Enabled: true},
	{ID: "gaps", Header: "Khoảng trống", Prompt: "Khoảng trống nghiên cứu", Enabled: false},
}

func TestGenerateMatrix(t *testing.T) {
	gen := &fakeGen{reply: `[{"stt": "1", "apa7": "Nguyen (2024)."}, {"stt": "2", "apa7": "Tran (2023)."}]`}
	c := newTestClient(gen)

	rows, err := c.GenerateMatrix(context.Background(), []string{"report one", "report two"}, matrixColumns)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nguyen (2024).", rows[0]["apa7"])

	assert.True(t, gen.jsonMode)
	assert.Contains(t, gen.content, "<report_collection>report one\n\nreport two</report_collection>")
	// Disabled columns stay out of both the schema and the instructions.
	assert.NotContains(t, gen.system, "gaps")
	assert.Contains(t, gen.system, "- **stt**: Số thứ tự")
}

func TestGenerateMatrixRejectsNonArray(t *testing.T) {
	c := newTestClient(&fakeGen{reply: `{"stt": "1"}`})
	_, err := c.GenerateMatrix(context.Background(), []string{"r"}, matrixColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMatrixParse))
	assert.Equal(t, MsgMatrixParse, common.UserMessage(err))
}

func TestGenerateMatrixRejectsInvalidJSON(t *testing.T) {
	c := newTestClient(&fakeGen{reply: "not json at all"})
	_, err := c.GenerateMatrix(context.Background(), []string{"r"}, matrixColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMatrixParse))
}

func TestGenerateMatrixRejectsMissingRequiredColumn(t *testing.T) {
	c := newTestClient(&fakeGen{reply: `[{"stt": "1"}]`})
	_, err := c.GenerateMatrix(context.Background(), []string{"r"}, matrixColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMatrixParse))
}

func TestGenerateMatrixNoEnabledColumns(t *testing.T) {
	c := newTestClient(&fakeGen{})
	_, err := c.GenerateMatrix(context.Background(), []string{"r"}, []MatrixColumn{
		{ID: "stt", Enabled: false},
	})
	require.Error(t, err)
	assert.Equal(t, MsgMatrixFailed, common.UserMessage(err))
}

func TestConvertToBibTeX(t *testing.T) {
	gen := &fakeGen{reply: "@article{nguyen2024,\n  title = {A Study}\n}"}
	c := newTestClient(gen)

	out, err := c.ConvertToBibTeX(context.Background(), []string{"Nguyen (2024).", "Tran (2023)."})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "@article{"))
	assert.Equal(t, "<apa_citations>\nNguyen (2024).\n---\nTran (2023).\n</apa_citations>", gen.content)
	assert.Equal(t, "gemini-2.5-flash", gen.model)
}

func TestBuildMatrixSchema(t *testing.T) {
	schema := BuildMatrixSchema(EnabledColumns(matrixColumns))
	props := schema["properties"].(map[string]any)
	assert.Len(t, props, 2)
	assert.ElementsMatch(t, []string{"stt", "apa7"}, schema["required"])
	assert.Equal(t, "Trích dẫn APA 7", props["apa7"].(map[string]any)["description"])
}
