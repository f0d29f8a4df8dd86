package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"citegraph/models"
	"citegraph/tester"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryUploader struct {
	objects map[string][]byte
	err     error
}

func (m *memoryUploader) Upload(_ context.Context, key string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return "https://s3.example.org/citegraph/" + key, nil
}

func TestSnapshotKey(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	at := time.Date(2026, 10, 15, 11, 30, 5, 0, berlin)
	assert.Equal(t, "stats/2026-10-15T09-30-05Z.json", SnapshotKey(at))
}

func TestSnapshotUploadsReportAndSetsGauges(t *testing.T) {
	store := tester.TestStore(t)
	g := tester.NewGraph(t, store, testNow)
	a := g.Paper("A", "AI", 2020)
	b := g.Paper("B", "NLP", 2021)
	g.Cite(a, b, 4, 3)

	uploader := &memoryUploader{}
	job := NewSnapshotJob(NewStatisticsService(store, zap.NewNop()), uploader, zap.NewNop())
	job.now = fixedClock

	link, err := job.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.org/citegraph/stats/2026-10-15T09-30-00Z.json", link)

	raw, ok := uploader.objects["stats/2026-10-15T09-30-00Z.json"]
	require.True(t, ok)
	var report models.StatisticsReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.EqualValues(t, 2, report.TotalPapers)
	assert.EqualValues(t, 4, report.TotalCitations)
	assert.Equal(t, 2.0, report.AverageCitationsPerPaper)

	assert.Equal(t, 2.0, testutil.ToFloat64(papersTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(citationsTotal))
}

func TestSnapshotWithoutUploader(t *testing.T) {
	store := tester.TestStore(t)
	job := NewSnapshotJob(NewStatisticsService(store, zap.NewNop()), nil, zap.NewNop())

	link, err := job.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, link)
	assert.Equal(t, 0.0, testutil.ToFloat64(papersTotal))
}

func TestSnapshotUploadError(t *testing.T) {
	boom := errors.New("AccessDenied")
	store := tester.TestStore(t)
	job := NewSnapshotJob(NewStatisticsService(store, zap.NewNop()), &memoryUploader{err: boom}, zap.NewNop())

	_, err := job.Snapshot(context.Background())
	assert.ErrorIs(t, err, boom)

	// Run schluckt den Fehler
	job.Run()
}
