package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"citegraph/models"
	"citegraph/tester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatisticsCompute(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, testNow)

	a1 := g.Paper("A1", "AI", 2021)
	g.Paper("A2", "AI", 2021)
	n1 := g.Paper("N1", "NLP", 2020)
	r1 := g.Paper("R1", "Robotics", 2015)
	g.Cite(r1, n1, 3, 10)
	g.Cite(n1, a1, 2, 400)

	report, err := NewStatisticsService(store, zap.NewNop()).Compute(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, report.TotalPapers)
	assert.EqualValues(t, 5, report.TotalCitations)
	assert.Equal(t, 1.25, report.AverageCitationsPerPaper)
	assert.Equal(t, []models.TopicCount{{Topic: "AI", Count: 2}, {Topic: "NLP", Count: 1}, {Topic: "Robotics", Count: 1}}, report.TopicDistribution)
	assert.Equal(t, []models.YearCount{{Year: 2021, Count: 2}, {Year: 2020, Count: 1}, {Year: 2015, Count: 1}}, report.YearDistribution)
	assert.Equal(t, []models.TopicCitations{{Topic: "NLP", CitationCount: 3}, {Topic: "AI", CitationCount: 2}}, report.MostCitedTopics)
}

func TestStatisticsRoundsAverage(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, testNow)

	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2020)
	g.Paper("C", "AI", 2020)
	g.Cite(a, b, 2, 1)

	report, err := NewStatisticsService(store, zap.NewNop()).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.67, report.AverageCitationsPerPaper)
}

func TestStatisticsEmptyCorpus(t *testing.T) {
	store := tester.TestStore(t)

	report, err := NewStatisticsService(store, zap.NewNop()).Compute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TotalPapers)
	assert.Zero(t, report.TotalCitations)
	assert.Zero(t, report.AverageCitationsPerPaper)

	buf, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_papers": 0,
		"total_citations": 0,
		"average_citations_per_paper": 0,
		"topic_distribution": [],
		"year_distribution": [],
		"most_cited_topics": []
	}`, string(buf))
}

type failingAggregates struct {
	CorpusAggregates
	err error
}

func (f failingAggregates) CountPapers(context.Context) (int64, error) { return 0, f.err }

func TestStatisticsPropagatesStoreError(t *testing.T) {
	boom := errors.New("timeout")
	_, err := NewStatisticsService(failingAggregates{err: boom}, zap.NewNop()).Compute(context.Background())
	assert.ErrorIs(t, err, boom)
}
