// Package export renders analysis results as downloadable files: a combined
// TXT report, XLSX workbooks for reports and the synthesis matrix, and the
// BibTeX library filename. All functions return bytes; delivery is the
// caller's concern.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/paperdesk/paperdesk/internal/store"
)

const noReportBody = "Không có nội dung báo cáo."

// AllTXT concatenates every document's report under a banner carrying the
// source filename. Documents without a report get a placeholder body.
func AllTXT(docs []store.Document) []byte {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		body := d.Report
		if body == "" {
			body = noReportBody
		}
		banner := fmt.Sprintf("========================================\nBÁO CÁO PHÂN TÍCH: %s\n========================================\n\n", d.Source.Name)
		parts = append(parts, banner+body)
	}
	return []byte(strings.Join(parts, "\n\n\n"))
}

// Timestamp renders t the way download filenames expect: an ISO-8601 UTC
// instant with colons and dots replaced so it is filesystem-safe.
func Timestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	s = strings.ReplaceAll(s, ":", "-")
	return strings.ReplaceAll(s, ".", "-")
}

// Filenames for the three global downloads.
func TXTFilename(t time.Time) string    { return "Tong_hop_bao_cao_" + Timestamp(t) + ".txt" }
func XLSXFilename(t time.Time) string   { return "Tong_hop_bao_cao_" + Timestamp(t) + ".xlsx" }
func BibTeXFilename(t time.Time) string { return "Thu_vien_" + Timestamp(t) + ".bib" }
func MatrixFilename(t time.Time) string { return "Ma_tran_tong_quan_" + Timestamp(t) + ".xlsx" }
