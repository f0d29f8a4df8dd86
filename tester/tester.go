// Package tester stellt Hilfen für Tests gegen eine echte (SQLite-)Datenbank bereit.
package tester

import (
	"context"
	"fmt"
	"testing"
	"time"

	"citegraph/models"
	"citegraph/storage"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB öffnet eine frische In-Memory-Datenbank mit migriertem Schema.
// Jeder Aufruf bekommt eine eigene Datenbank; sie wird mit dem Test geschlossen.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Paper{}, &models.Citation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// TestStore liefert einen Store auf einer frischen Testdatenbank.
func TestStore(t testing.TB) *storage.Store {
	t.Helper()
	return storage.NewStore(TestDB(t), 50, 100)
}

// Graph hilft beim Aufbau kleiner Zitationsgraphen in Tests.
type Graph struct {
	t     testing.TB
	store *storage.Store
	Now   time.Time
}

// NewGraph baut Papers und Zitationen relativ zu now auf.
func NewGraph(t testing.TB, store *storage.Store, now time.Time) *Graph {
	return &Graph{t: t, store: store, Now: now}
}

// Paper legt ein Paper an und gibt seine ID zurück.
func (g *Graph) Paper(title, topic string, year int) uint {
	g.t.Helper()
	ids, err := g.store.InsertPapersBatch(context.Background(), []models.Paper{
		{Title: title, Topic: topic, PublishedYear: year},
	})
	if err != nil {
		g.t.Fatalf("insert paper %q: %v", title, err)
	}
	return ids[0]
}

// Cite lässt source das Ziel target n-mal zitieren, jeweils daysAgo Tage vor Now.
func (g *Graph) Cite(source, target uint, n int, daysAgo int) {
	g.t.Helper()
	citations := make([]models.Citation, n)
	for i := range citations {
		citations[i] = models.Citation{
			SourcePaperID: source,
			TargetPaperID: target,
			CitationDate:  g.Now.AddDate(0, 0, -daysAgo),
		}
	}
	if err := g.store.InsertCitationsBatch(context.Background(), citations); err != nil {
		g.t.Fatalf("insert citations %d->%d: %v", source, target, err)
	}
}
