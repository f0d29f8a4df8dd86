package services

import (
	"context"

	"citegraph/models"

	"go.uber.org/zap"
)

// MostCitedTopicsLimit begrenzt die Liste der meistzitierten Topics im Report.
const MostCitedTopicsLimit = 10

// CorpusAggregates ist der Ausschnitt des Stores, den die Statistik braucht.
type CorpusAggregates interface {
	CountPapers(ctx context.Context) (int64, error)
	CountCitations(ctx context.Context) (int64, error)
	InboundCitationTotal(ctx context.Context) (int64, error)
	TopicDistribution(ctx context.Context) ([]models.TopicCount, error)
	YearDistribution(ctx context.Context) ([]models.YearCount, error)
	MostCitedTopics(ctx context.Context, limit int) ([]models.TopicCitations, error)
}

// StatisticsService berechnet korpusweite Kennzahlen, immer frisch aus der Datenbank.
type StatisticsService struct {
	Store  CorpusAggregates
	Logger *zap.Logger
}

func NewStatisticsService(store CorpusAggregates, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{Store: store, Logger: logger}
}

// Compute erstellt den StatisticsReport. Der erste Datenbankfehler bricht ab.
func (s *StatisticsService) Compute(ctx context.Context) (*models.StatisticsReport, error) {
	report := &models.StatisticsReport{}
	var err error

	if report.TotalPapers, err = s.Store.CountPapers(ctx); err != nil {
		return nil, err
	}
	if report.TotalCitations, err = s.Store.CountCitations(ctx); err != nil {
		return nil, err
	}
	if report.TopicDistribution, err = s.Store.TopicDistribution(ctx); err != nil {
		return nil, err
	}
	if report.YearDistribution, err = s.Store.YearDistribution(ctx); err != nil {
		return nil, err
	}
	if report.MostCitedTopics, err = s.Store.MostCitedTopics(ctx, MostCitedTopicsLimit); err != nil {
		return nil, err
	}

	if report.TotalPapers > 0 {
		inbound, err := s.Store.InboundCitationTotal(ctx)
		if err != nil {
			return nil, err
		}
		report.AverageCitationsPerPaper = roundTo2(float64(inbound) / float64(report.TotalPapers))
	}

	s.Logger.Debug("Computed statistics",
		zap.Int64("papers", report.TotalPapers),
		zap.Int64("citations", report.TotalCitations))
	return report, nil
}
