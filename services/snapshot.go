package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Uploader legt Dateien in einem Object Storage ab.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// SnapshotJob berechnet periodisch die Statistik, aktualisiert die Gauges und
// lädt den Report optional nach S3.
type SnapshotJob struct {
	Stats    *StatisticsService
	Uploader Uploader // nil: kein Upload
	Logger   *zap.Logger
	Timeout  time.Duration

	now func() time.Time
}

func NewSnapshotJob(stats *StatisticsService, uploader Uploader, logger *zap.Logger) *SnapshotJob {
	return &SnapshotJob{
		Stats:    stats,
		Uploader: uploader,
		Logger:   logger,
		Timeout:  5 * time.Minute,
		now:      time.Now,
	}
}

// Run ist der Einstiegspunkt für den Cron-Scheduler; Fehler werden nur geloggt.
func (j *SnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	if _, err := j.Snapshot(ctx); err != nil {
		j.Logger.Error("Statistics snapshot failed", zap.Error(err))
	}
}

// Snapshot führt einen Lauf aus und gibt den Link des hochgeladenen Reports zurück
// (leer, wenn kein Uploader konfiguriert ist).
func (j *SnapshotJob) Snapshot(ctx context.Context) (string, error) {
	report, err := j.Stats.Compute(ctx)
	if err != nil {
		return "", fmt.Errorf("compute statistics: %w", err)
	}
	papersTotal.Set(float64(report.TotalPapers))
	citationsTotal.Set(float64(report.TotalCitations))

	if j.Uploader == nil {
		j.Logger.Info("Statistics snapshot refreshed", zap.Int64("papers", report.TotalPapers))
		return "", nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode statistics: %w", err)
	}
	key := SnapshotKey(j.now())
	link, err := j.Uploader.Upload(ctx, key, data)
	if err != nil {
		return "", err
	}
	j.Logger.Info("Statistics snapshot uploaded",
		zap.String("link", link),
		zap.Int64("papers", report.TotalPapers),
		zap.Int64("citations", report.TotalCitations))
	return link, nil
}

// SnapshotKey liefert den Objektnamen für einen Snapshot zum Zeitpunkt t.
func SnapshotKey(t time.Time) string {
	return "stats/" + t.UTC().Format("2006-01-02T15-04-05Z") + ".json"
}
