package collection

import "github.com/trackshelf/trackshelf-backend/internal/shelf/domain"

// Summary counts entries for the dashboard header.
type Summary struct {
	Total      int            `json:"total"`
	Fresh      int            `json:"fresh"`
	Soon       int            `json:"soon"`
	Expired    int            `json:"expired"`
	Undated    int            `json:"undated"`
	ByCategory map[string]int `json:"by_category"`
}

// Summarize counts entries per warn level and per category.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries), ByCategory: make(map[string]int)}
	for _, e := range entries {
		switch e.WarnLevel {
		case domain.WarnFresh:
			s.Fresh++
		case domain.WarnSoon:
			s.Soon++
		case domain.WarnExpired:
			s.Expired++
		default:
			s.Undated++
		}
		s.ByCategory[e.Category]++
	}
	return s
}
