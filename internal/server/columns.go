package server

import "github.com/paperdesk/paperdesk/internal/ai"

// Columns returns a copy of the current matrix column set.
func (s *Server) Columns() []ai.MatrixColumn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ai.MatrixColumn, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Server) setColumns(cols []ai.MatrixColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = cols
}
