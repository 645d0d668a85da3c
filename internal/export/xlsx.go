package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/paperdesk/paperdesk/internal/report"
	"github.com/paperdesk/paperdesk/internal/store"
)

// ErrNothingToExport is returned when no document carries a report.
var ErrNothingToExport = fmt.Errorf("không có báo cáo nào để xuất")

// AllXLSX builds a workbook with one sheet per document that has a report.
// Sheet names derive from the source filename, capped at Excel's 31-character
// limit and deduplicated.
func AllXLSX(docs []store.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	var sheets int
	for _, d := range docs {
		if d.Report == "" {
			continue
		}
		name := sheetName(d.Source.Name, used)
		if sheets == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, err
			}
		}
		sheets++
		if err := writeReportSheet(f, name, d.Report); err != nil {
			return nil, err
		}
	}
	if sheets == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetName strips the extension, truncates to 31 runes, and appends a
// counter on collision.
func sheetName(filename string, used map[string]bool) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "Báo cáo"
	}
	name := truncateRunes(base, 31)
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, 31-len([]rune(suffix))) + suffix
	}
	used[name] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// writeReportSheet lays a report out as two columns: section title and body.
func writeReportSheet(f *excelize.File, sheet, reportText string) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Mục", "Nội dung"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 100); err != nil {
		return err
	}

	sections := report.SplitSections(reportText)
	for i, sec := range sections {
		row := i + 2
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{sec.Title, sec.Body}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), bodyStyle); err != nil {
			return err
		}
	}
	return nil
}
