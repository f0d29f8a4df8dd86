package storage_test

import (
	"context"
	"testing"
	"time"

	"citegraph/models"
	"citegraph/storage"
	"citegraph/tester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestInsertPapersBatchReturnsIDsInOrder(t *testing.T) {
	store := tester.TestStore(t)
	papers := make([]models.Paper, 120)
	for i := range papers {
		papers[i] = models.Paper{Title: "Paper", Topic: "AI", PublishedYear: 2000 + i%25}
	}

	ids, err := store.InsertPapersBatch(context.Background(), papers)
	require.NoError(t, err)
	require.Len(t, ids, 120)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	count, err := store.CountPapers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 120, count)
}

func TestInsertCitationsBatchRejectsSelfCitation(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2021)

	err := store.InsertCitationsBatch(context.Background(), []models.Citation{
		{SourcePaperID: a, TargetPaperID: b, CitationDate: now},
		{SourcePaperID: b, TargetPaperID: b, CitationDate: now},
	})
	require.ErrorIs(t, err, storage.ErrSelfCitation)

	count, err := store.CountCitations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "no row of a rejected batch may be written")
}

func TestTopCitedPapers(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)

	citer := g.Paper("Citer", "Physics", 2010)
	top := g.Paper("Top", "AI", 2019)
	tieLow := g.Paper("Tie low id", "AI", 2020)
	tieHigh := g.Paper("Tie high id", "AI", 2021)
	g.Paper("Uncited", "AI", 2022)
	other := g.Paper("Other topic", "NLP", 2018)

	g.Cite(citer, top, 6, 400)
	g.Cite(citer, top, 4, 3)
	g.Cite(citer, tieHigh, 7, 31)
	g.Cite(citer, tieLow, 7, 30)
	g.Cite(citer, other, 20, 1)

	rows, err := store.TopCitedPapers(context.Background(), "AI", now.AddDate(0, 0, -30), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, top, rows[0].ID)
	assert.EqualValues(t, 10, rows[0].CitationCount)
	assert.EqualValues(t, 4, rows[0].RecentCitationCount)
	assert.Equal(t, "Top", rows[0].Title)
	assert.Equal(t, 2019, rows[0].PublishedYear)

	assert.Equal(t, tieLow, rows[1].ID)
	assert.EqualValues(t, 7, rows[1].RecentCitationCount, "citations exactly 30 days old count as recent")
	assert.Equal(t, tieHigh, rows[2].ID)
	assert.EqualValues(t, 0, rows[2].RecentCitationCount)

	rows, err = store.TopCitedPapers(context.Background(), "AI", now.AddDate(0, 0, -30), 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestTopCitedPapersTopicIsCaseSensitive(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2020)
	g.Cite(a, b, 1, 1)

	rows, err := store.TopCitedPapers(context.Background(), "ai", now, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = store.TopCitedPapers(context.Background(), "", now, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTopCitedPapersNonPositiveLimit(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2020)
	g.Cite(a, b, 1, 1)

	for _, limit := range []int{0, -1} {
		rows, err := store.TopCitedPapers(context.Background(), "AI", now, limit)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	}

	topics, err := store.MostCitedTopics(context.Background(), -5)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestInsertCitationsBatchKeepsLocalCalendarDay(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2020)

	berlin := time.FixedZone("CEST", 2*60*60)
	require.NoError(t, store.InsertCitationsBatch(context.Background(), []models.Citation{
		{SourcePaperID: a, TargetPaperID: b, CitationDate: time.Date(2026, 9, 15, 0, 30, 0, 0, berlin)},
	}))

	var stored models.Citation
	require.NoError(t, store.DB.First(&stored).Error)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), stored.CitationDate.UTC())

	rows, err := store.TopCitedPapers(context.Background(), "AI", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0].RecentCitationCount)
}

func TestAggregates(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	ctx := context.Background()

	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2021)
	c := g.Paper("C", "NLP", 2021)
	g.Paper("D", "Robotics", 2015)
	g.Cite(a, c, 3, 10)
	g.Cite(c, b, 2, 100)

	total, err := store.InboundCitationTotal(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	topics, err := store.TopicDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TopicCount{{Topic: "AI", Count: 2}, {Topic: "NLP", Count: 1}, {Topic: "Robotics", Count: 1}}, topics)

	years, err := store.YearDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.YearCount{{Year: 2021, Count: 2}, {Year: 2020, Count: 1}, {Year: 2015, Count: 1}}, years)

	cited, err := store.MostCitedTopics(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []models.TopicCitations{{Topic: "NLP", CitationCount: 3}, {Topic: "AI", CitationCount: 2}}, cited)

	ids, err := store.PaperIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}

func TestClearAll(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2021)
	g.Cite(a, b, 5, 1)

	papers, citations, err := store.ClearAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, papers)
	assert.EqualValues(t, 5, citations)

	count, err := store.CountPapers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPaperWithCitationsCannotBeDeleted(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, now)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "AI", 2021)
	g.Cite(a, b, 1, 1)

	err := store.DB.Delete(&models.Paper{}, b).Error
	assert.Error(t, err)
}

func TestExpiredObjects(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	objects := []storage.ObjectInfo{
		{Key: "b", LastModified: base.Add(2 * time.Hour)},
		{Key: "a", LastModified: base.Add(1 * time.Hour)},
		{Key: "d", LastModified: base.Add(4 * time.Hour)},
		{Key: "c", LastModified: base.Add(3 * time.Hour)},
	}

	expired := storage.ExpiredObjects(objects, 2)
	require.Len(t, expired, 2)
	assert.Equal(t, "b", expired[0].Key)
	assert.Equal(t, "a", expired[1].Key)

	assert.Nil(t, storage.ExpiredObjects(objects, 4))
}
