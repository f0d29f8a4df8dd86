package models

// TopPaper ist ein abgeleitetes Ranking-Ergebnis; es wird nur im Cache gehalten, nie in der DB.
type TopPaper struct {
	ID                 uint    `json:"id"`
	Title              string  `json:"title"`
	Topic              string  `json:"topic"`
	PublishedYear      int     `json:"published_year"`
	CitationCount      int64   `json:"citation_count"`
	CitationGrowthRate float64 `json:"citation_growth_rate"`
}

// PaperCitationCount ist eine Zeile der Aggregat-Abfrage über papers ⋈ citations.
type PaperCitationCount struct {
	ID                  uint
	Title               string
	Topic               string
	PublishedYear       int
	CitationCount       int64
	RecentCitationCount int64
}
