package services

import (
	"context"
	"math"
	"slices"
	"time"

	"citegraph/models"

	"go.uber.org/zap"
)

// RecentWindowDays ist das Zeitfenster (in Kalendertagen, UTC) für die Wachstumsrate.
const RecentWindowDays = 30

// CitationGraph ist der Ausschnitt des Stores, den das Ranking braucht.
type CitationGraph interface {
	TopCitedPapers(ctx context.Context, topic string, since time.Time, limit int) ([]models.PaperCitationCount, error)
}

// Ranker berechnet die meistzitierten Papers eines Topics.
type Ranker interface {
	RankTopPapers(ctx context.Context, topic string, limit int) ([]models.TopPaper, error)
}

// RankingService berechnet Top-Papers inkl. Wachstumsrate direkt aus der Datenbank.
type RankingService struct {
	Graph  CitationGraph
	Logger *zap.Logger
	now    func() time.Time
}

// NewRankingService erstellt einen RankingService mit der Systemuhr.
func NewRankingService(graph CitationGraph, logger *zap.Logger) *RankingService {
	return &RankingService{Graph: graph, Logger: logger, now: time.Now}
}

// WithClock setzt die Uhr, gegen die das 30-Tage-Fenster berechnet wird.
func (r *RankingService) WithClock(now func() time.Time) *RankingService {
	r.now = now
	return r
}

// RankTopPapers liefert höchstens limit Papers des Topics, sortiert nach Zitationen
// absteigend und bei Gleichstand nach ID aufsteigend. Papers ohne Zitation tauchen nie auf.
// Fehler der Datenbank werden unverändert weitergereicht.
func (r *RankingService) RankTopPapers(ctx context.Context, topic string, limit int) ([]models.TopPaper, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}

	start := time.Now()
	since := models.CitationDay(r.now().UTC()).AddDate(0, 0, -RecentWindowDays)
	rows, err := r.Graph.TopCitedPapers(ctx, topic, since, limit)
	rankingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rows, func(a, b models.PaperCitationCount) int {
		if a.CitationCount != b.CitationCount {
			if a.CitationCount > b.CitationCount {
				return -1
			}
			return 1
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	papers := make([]models.TopPaper, 0, min(len(rows), limit))
	for _, row := range rows {
		if row.CitationCount <= 0 {
			continue
		}
		if len(papers) == limit {
			break
		}
		papers = append(papers, models.TopPaper{
			ID:                 row.ID,
			Title:              row.Title,
			Topic:              row.Topic,
			PublishedYear:      row.PublishedYear,
			CitationCount:      row.CitationCount,
			CitationGrowthRate: GrowthRate(row.RecentCitationCount, row.CitationCount),
		})
	}

	r.Logger.Debug("Ranked top papers",
		zap.String("topic", topic),
		zap.Int("limit", limit),
		zap.Int("results", len(papers)))
	return papers, nil
}

// GrowthRate ist der Anteil der jüngsten Zitationen in Prozent, auf zwei Stellen gerundet.
func GrowthRate(recent, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if recent > total {
		recent = total
	}
	if recent < 0 {
		recent = 0
	}
	return roundTo2(float64(recent) / float64(total) * 100)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
