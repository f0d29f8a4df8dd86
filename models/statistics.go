package models

// StatisticsReport fasst Verteilungen über den gesamten Korpus zusammen.
type StatisticsReport struct {
	TotalPapers              int64            `json:"total_papers"`
	TotalCitations           int64            `json:"total_citations"`
	AverageCitationsPerPaper float64          `json:"average_citations_per_paper"`
	TopicDistribution        []TopicCount     `json:"topic_distribution"`
	YearDistribution         []YearCount      `json:"year_distribution"`
	MostCitedTopics          []TopicCitations `json:"most_cited_topics"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

type TopicCitations struct {
	Topic         string `json:"topic"`
	CitationCount int64  `json:"citation_count"`
}
