package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/paperdesk/paperdesk/internal/ai"
)

const matrixSheet = "Ma trận Tổng quan"

// MatrixXLSX renders the synthesis matrix as a workbook. Markdown emphasis in
// cell values becomes Excel rich text: **bold** and *italic* runs.
func MatrixXLSX(rows []ai.MatrixRow, columns []ai.MatrixColumn) ([]byte, error) {
	enabled := ai.EnabledColumns(columns)
	if len(enabled) == 0 {
		return nil, fmt.Errorf("không có cột nào được bật")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", matrixSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range enabled {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(matrixSheet, cell, col.Header); err != nil {
			return nil, err
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := 40.0
		if len([]rune(col.Header)) > 20 {
			width = 60.0
		}
		if err := f.SetColWidth(matrixSheet, colName, colName, width); err != nil {
			return nil, err
		}
	}
	if err := styleRow(f, headerStyle, 1, len(enabled)); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, col := range enabled {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			text := cellText(row[col.ID])
			if err := f.SetCellRichText(matrixSheet, cell, markdownRuns(text)); err != nil {
				return nil, err
			}
		}
		if err := styleRow(f, bodyStyle, r+2, len(enabled)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func styleRow(f *excelize.File, style, row, cols int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(matrixSheet, first, last, style)
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

var emphasis = regexp.MustCompile(`\*\*.*?\*\*|\*.*?\*`)

// markdownRuns splits markdown emphasis into rich-text runs. Bold and italic
// runs carry an explicit font so Excel keeps the rest of the cell's
// formatting intact.
func markdownRuns(text string) []excelize.RichTextRun {
	var runs []excelize.RichTextRun
	last := 0
	for _, loc := range emphasis.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			runs = append(runs, excelize.RichTextRun{Text: text[last:loc[0]]})
		}
		match := text[loc[0]:loc[1]]
		bold := strings.HasPrefix(match, "**")
		content := strings.Trim(match, "*")
		font := &excelize.Font{Size: 11, Family: "Calibri"}
		if bold {
			font.Bold = true
		} else {
			font.Italic = true
		}
		runs = append(runs, excelize.RichTextRun{Text: content, Font: font})
		last = loc[1]
	}
	if last < len(text) {
		runs = append(runs, excelize.RichTextRun{Text: text[last:]})
	}
	if len(runs) == 0 {
		runs = append(runs, excelize.RichTextRun{Text: ""})
	}
	return runs
}
