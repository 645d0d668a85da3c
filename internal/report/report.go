// Package report parses the structured academic-audit reports returned by
// the AI collaborator: numbered-heading sections, the APA citation block, and
// the delimited chart-data blocks inside bibliometric syntheses.
package report

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Section is one numbered block of a report.
type Section struct {
	Title string
	Body  string
}

var headingLine = regexp.MustCompile(`^\*\*[0-9]+\.\s`)

// SplitSections splits a report on numbered markdown headings (`**N. ` at
// line start). The title is the heading line with the bold markers stripped;
// the body is everything until the next heading.
func SplitSections(rep string) []Section {
	lines := strings.Split(rep, "\n")
	var chunks [][]string
	cur := []string{}
	for i, line := range lines {
		if i > 0 && headingLine.MatchString(line) {
			chunks = append(chunks, cur)
			cur = nil
		}
		cur = append(cur, line)
	}
	chunks = append(chunks, cur)

	out := make([]Section, 0, len(chunks))
	for _, c := range chunks {
		title := strings.TrimSpace(strings.ReplaceAll(c[0], "**", ""))
		body := ""
		if len(c) > 1 {
			body = strings.TrimSpace(strings.Join(c[1:], "\n"))
		}
		out = append(out, Section{Title: title, Body: body})
	}
	return out
}

var apaSection = regexp.MustCompile(
	`(?s)\*\*3\.\s+Trích dẫn bài báo \(Chuẩn APA 7th\)\*\*\n(.*?)(?:\n\n\*\*4\.|$)`)

// APACitation pulls the citation body out of report section 3; "" when the
// section is absent.
func APACitation(rep string) string {
	m := apaSection.FindStringSubmatch(rep)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ChartData is the payload of one embedded chart block.
type ChartData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ChartSet holds the two chart blocks a bibliometric synthesis may embed.
// A nil entry means the block was missing or unparseable.
type ChartSet struct {
	BarThemes  *ChartData `json:"barThemes,omitempty"`
	PieMethods *ChartData `json:"pieMethods,omitempty"`
}

var chartBlock = regexp.MustCompile(`(?s)CHART_DATA_START:(BarThemes|PieMethods)\s*(.*?)\s*CHART_DATA_END`)

// ExtractChartBlocks pulls the delimited JSON chart blocks out of a
// bibliometric report and returns the report prose with the blocks stripped.
func ExtractChartBlocks(md string) (string, ChartSet) {
	var set ChartSet
	for _, m := range chartBlock.FindAllStringSubmatch(md, -1) {
		raw := strings.TrimSpace(m[2])
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		var data ChartData
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
			continue
		}
		switch m[1] {
		case "BarThemes":
			set.BarThemes = &data
		case "PieMethods":
			set.PieMethods = &data
		}
	}
	prose := chartBlock.ReplaceAllString(md, "")
	return strings.TrimSpace(prose), set
}
