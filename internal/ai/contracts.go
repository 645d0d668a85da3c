package ai

// MatrixColumn is one user-configurable column of the synthesis matrix. ID is
// the JSON field key in the generated rows; Prompt tells the model what to
// put there.
type MatrixColumn struct {
	ID      string `json:"id"`
	Header  string `json:"header"`
	Prompt  string `json:"prompt"`
	Enabled bool   `json:"enabled"`
}

// MatrixRow is one document's entry in the synthesis matrix, keyed by
// column ID.
type MatrixRow map[string]any

// DefaultMatrixColumns is the column set users start from. The prompts
// reference the numbered sections of the per-document audit report.
func DefaultMatrixColumns() []MatrixColumn {
	return []MatrixColumn{
		{ID: "stt", Header: "STT", Prompt: `Số thứ tự, bắt đầu từ "1".`, Enabled: true},
		{ID: "apa7", Header: "Trích dẫn APA7th", Prompt: "Trích dẫn đầy đủ theo chuẩn APA 7th (lấy từ mục 3 của báo cáo).", Enabled: true},
		{ID: "context", Header: "Bối cảnh", Prompt: "Tóm tắt súc tích về Bối cảnh và Luận đề (từ mục 4).", Enabled: true},
		{ID: "mainContent", Header: "Nội dung chính", Prompt: "Tổng hợp những điểm chính về Phương pháp luận và Kết quả (từ mục 7, 8). **Làm nổi bật** phương pháp và kết quả chính.", Enabled: true},
		{ID: "gaps", Header: "Khoảng trống/Hạn chế", Prompt: "Liệt kê các Khoảng trống/Hạn chế và Hướng nghiên cứu tương lai (từ mục 9, 11).", Enabled: true},
	}
}
