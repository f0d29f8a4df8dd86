package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"citegraph/models"

	"gorm.io/gorm"
)

// ErrSelfCitation wird zurückgegeben, wenn eine Zitation auf ihr eigenes Quell-Paper zeigt.
var ErrSelfCitation = errors.New("citation source and target must differ")

const defaultBatchSize = 1000

// Store kapselt den Zitationsgraphen (papers, citations) hinter GORM.
type Store struct {
	DB                *gorm.DB
	PaperBatchSize    int
	CitationBatchSize int
}

// NewStore erstellt einen Store mit den gegebenen Batch-Größen für Bulk-Inserts.
func NewStore(db *gorm.DB, paperBatchSize, citationBatchSize int) *Store {
	if paperBatchSize <= 0 {
		paperBatchSize = defaultBatchSize
	}
	if citationBatchSize <= 0 {
		citationBatchSize = defaultBatchSize
	}
	return &Store{
		DB:                db,
		PaperBatchSize:    paperBatchSize,
		CitationBatchSize: citationBatchSize,
	}
}

// Migrate legt Tabellen und Indizes an.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(&models.Paper{}, &models.Citation{})
}

// InsertPapersBatch schreibt alle Papers in einer Transaktion als Multi-Row-Inserts
// und liefert die vergebenen IDs in Eingabereihenfolge.
func (s *Store) InsertPapersBatch(ctx context.Context, papers []models.Paper) ([]uint, error) {
	if len(papers) == 0 {
		return nil, nil
	}
	if err := s.DB.WithContext(ctx).CreateInBatches(papers, s.PaperBatchSize).Error; err != nil {
		return nil, fmt.Errorf("insert papers: %w", err)
	}
	ids := make([]uint, len(papers))
	for i := range papers {
		ids[i] = papers[i].ID
	}
	return ids, nil
}

// InsertCitationsBatch schreibt alle Zitationen in Batches. Enthält der Batch eine
// Selbstzitation, wird nichts geschrieben. CitationDate wird auf den Kalendertag in
// seiner eigenen Zeitzone gekürzt und als Mitternacht UTC gespeichert (siehe
// models.CitationDay).
func (s *Store) InsertCitationsBatch(ctx context.Context, citations []models.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	for i := range citations {
		if citations[i].SourcePaperID == citations[i].TargetPaperID {
			return fmt.Errorf("citation %d (paper %d): %w", i, citations[i].SourcePaperID, ErrSelfCitation)
		}
		citations[i].CitationDate = models.CitationDay(citations[i].CitationDate)
	}
	if err := s.DB.WithContext(ctx).Omit("SourcePaper", "TargetPaper").CreateInBatches(citations, s.CitationBatchSize).Error; err != nil {
		return fmt.Errorf("insert citations: %w", err)
	}
	return nil
}

// TopCitedPapers aggregiert für alle Papers eines Topics die eingehenden Zitationen
// gesamt und seit since. Papers ohne Zitation fallen durch den Inner Join heraus.
// Sortierung: citation_count absteigend, bei Gleichstand id aufsteigend.
func (s *Store) TopCitedPapers(ctx context.Context, topic string, since time.Time, limit int) ([]models.PaperCitationCount, error) {
	if limit <= 0 {
		return []models.PaperCitationCount{}, nil
	}
	rows := make([]models.PaperCitationCount, 0, limit)
	err := s.DB.WithContext(ctx).
		Table("papers").
		Select(`papers.id, papers.title, papers.topic, papers.published_year,
			COUNT(citations.id) AS citation_count,
			SUM(CASE WHEN citations.citation_date >= ? THEN 1 ELSE 0 END) AS recent_citation_count`,
			models.CitationDay(since)).
		Joins("JOIN citations ON citations.target_paper_id = papers.id").
		Where("papers.topic = ?", topic).
		Group("papers.id, papers.title, papers.topic, papers.published_year").
		Order("citation_count DESC, papers.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query top cited papers for topic %q: %w", topic, err)
	}
	return rows, nil
}

// CountPapers zählt alle Papers.
func (s *Store) CountPapers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Paper{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return count, nil
}

// CountCitations zählt alle Zitationen.
func (s *Store) CountCitations(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Citation{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count citations: %w", err)
	}
	return count, nil
}

// InboundCitationTotal summiert die eingehenden Zitationen über alle Papers (Outer Join).
func (s *Store) InboundCitationTotal(ctx context.Context) (int64, error) {
	var total int64
	err := s.DB.WithContext(ctx).
		Table("papers").
		Select("COUNT(citations.id)").
		Joins("LEFT JOIN citations ON citations.target_paper_id = papers.id").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum inbound citations: %w", err)
	}
	return total, nil
}

// TopicDistribution liefert die Anzahl Papers pro Topic, absteigend nach Anzahl.
func (s *Store) TopicDistribution(ctx context.Context) ([]models.TopicCount, error) {
	rows := make([]models.TopicCount, 0)
	err := s.DB.WithContext(ctx).
		Model(&models.Paper{}).
		Select("topic, COUNT(id) AS count").
		Group("topic").
		Order("count DESC, topic ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("topic distribution: %w", err)
	}
	return rows, nil
}

// YearDistribution liefert die Anzahl Papers pro Erscheinungsjahr, neueste Jahre zuerst.
func (s *Store) YearDistribution(ctx context.Context) ([]models.YearCount, error) {
	rows := make([]models.YearCount, 0)
	err := s.DB.WithContext(ctx).
		Model(&models.Paper{}).
		Select("published_year AS year, COUNT(id) AS count").
		Group("published_year").
		Order("published_year DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("year distribution: %w", err)
	}
	return rows, nil
}

// MostCitedTopics liefert die Topics mit den meisten eingehenden Zitationen.
func (s *Store) MostCitedTopics(ctx context.Context, limit int) ([]models.TopicCitations, error) {
	if limit <= 0 {
		return []models.TopicCitations{}, nil
	}
	rows := make([]models.TopicCitations, 0, limit)
	err := s.DB.WithContext(ctx).
		Table("papers").
		Select("papers.topic AS topic, COUNT(citations.id) AS citation_count").
		Joins("JOIN citations ON citations.target_paper_id = papers.id").
		Group("papers.topic").
		Order("citation_count DESC, papers.topic ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("most cited topics: %w", err)
	}
	return rows, nil
}

// PaperIDs liefert alle vorhandenen Paper-IDs.
func (s *Store) PaperIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&models.Paper{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list paper ids: %w", err)
	}
	return ids, nil
}

// ClearAll löscht alle Zitationen und danach alle Papers in einer Transaktion.
func (s *Store) ClearAll(ctx context.Context) (papersDeleted, citationsDeleted int64, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		res := global.Delete(&models.Citation{})
		if res.Error != nil {
			return fmt.Errorf("delete citations: %w", res.Error)
		}
		citationsDeleted = res.RowsAffected

		res = global.Delete(&models.Paper{})
		if res.Error != nil {
			return fmt.Errorf("delete papers: %w", res.Error)
		}
		papersDeleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return papersDeleted, citationsDeleted, nil
}
