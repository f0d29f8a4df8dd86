package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"citegraph/models"

	"go.uber.org/zap"
)

// ErrGenerationRunning verhindert parallele Generatorläufe.
var ErrGenerationRunning = errors.New("generation already running")

// DefaultTopics sind die Topics der synthetischen Papers.
var DefaultTopics = []string{
	"AI", "Machine Learning", "Deep Learning", "NLP", "Computer Vision",
	"Robotics", "Data Science", "Statistics", "Mathematics", "Physics",
}

// IngestionSink nimmt Papers und Zitationen in großen Batches entgegen.
type IngestionSink interface {
	InsertPapersBatch(ctx context.Context, papers []models.Paper) ([]uint, error)
	InsertCitationsBatch(ctx context.Context, citations []models.Citation) error
	PaperIDs(ctx context.Context) ([]uint, error)
	CountPapers(ctx context.Context) (int64, error)
	CountCitations(ctx context.Context) (int64, error)
}

// GenerateOptions steuern Umfang und Batch-Größen eines Generatorlaufs.
type GenerateOptions struct {
	Papers            int
	Citations         int
	PaperBatchSize    int
	CitationBatchSize int
	Topics            []string
	MinYear, MaxYear  int
	FirstCitationDate time.Time
}

// DefaultGenerateOptions entspricht dem Standardlauf: 10k Papers, 1M Zitationen.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Papers:            10000,
		Citations:         1000000,
		PaperBatchSize:    1000,
		CitationBatchSize: 5000,
		Topics:            DefaultTopics,
		MinYear:           2000,
		MaxYear:           2024,
		FirstCitationDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// GenerateResult enthält die Gesamtzahlen nach dem Lauf.
type GenerateResult struct {
	PapersCreated    int64 `json:"papers_created"`
	CitationsCreated int64 `json:"citations_created"`
}

// GenerateService befüllt den Zitationsgraphen mit synthetischen Daten.
type GenerateService struct {
	Sink    IngestionSink
	Logger  *zap.Logger
	Options GenerateOptions

	rng     *rand.Rand
	now     func() time.Time
	running atomic.Bool
}

func NewGenerateService(sink IngestionSink, opts GenerateOptions, logger *zap.Logger) *GenerateService {
	return &GenerateService{
		Sink:    sink,
		Logger:  logger,
		Options: opts,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now:     time.Now,
	}
}

// WithSeed macht die Zufallsdaten reproduzierbar.
func (g *GenerateService) WithSeed(seed uint64) *GenerateService {
	g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return g
}

// WithClock setzt das Enddatum der Zitationen.
func (g *GenerateService) WithClock(now func() time.Time) *GenerateService {
	g.now = now
	return g
}

// Generate schreibt erst alle Papers, dann alle Zitationen zwischen zufälligen,
// verschiedenen Papers. Es läuft höchstens ein Generate gleichzeitig.
func (g *GenerateService) Generate(ctx context.Context) (*GenerateResult, error) {
	if !g.running.CompareAndSwap(false, true) {
		return nil, ErrGenerationRunning
	}
	defer g.running.Store(false)

	opts := g.Options
	if len(opts.Topics) == 0 {
		opts.Topics = DefaultTopics
	}
	if opts.PaperBatchSize <= 0 {
		opts.PaperBatchSize = 1000
	}
	if opts.CitationBatchSize <= 0 {
		opts.CitationBatchSize = 5000
	}

	g.Logger.Info("Starting citation generation",
		zap.Int("papers", opts.Papers),
		zap.Int("citations", opts.Citations))

	if err := g.generatePapers(ctx, opts); err != nil {
		return nil, err
	}
	if err := g.generateCitations(ctx, opts); err != nil {
		return nil, err
	}

	papers, err := g.Sink.CountPapers(ctx)
	if err != nil {
		return nil, err
	}
	citations, err := g.Sink.CountCitations(ctx)
	if err != nil {
		return nil, err
	}
	g.Logger.Info("Generation complete",
		zap.Int64("papers", papers),
		zap.Int64("citations", citations))
	return &GenerateResult{PapersCreated: papers, CitationsCreated: citations}, nil
}

func (g *GenerateService) generatePapers(ctx context.Context, opts GenerateOptions) error {
	batch := make([]models.Paper, 0, opts.PaperBatchSize)
	flush := func(done int) error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := g.Sink.InsertPapersBatch(ctx, batch); err != nil {
			return err
		}
		generatedRecords.WithLabelValues("paper").Add(float64(len(batch)))
		g.Logger.Info("Created papers", zap.Int("count", done))
		batch = batch[:0]
		return nil
	}

	for i := 0; i < opts.Papers; i++ {
		batch = append(batch, models.Paper{
			Title:         fmt.Sprintf("Research Paper %d", i+1),
			Topic:         opts.Topics[g.rng.IntN(len(opts.Topics))],
			PublishedYear: opts.MinYear + g.rng.IntN(opts.MaxYear-opts.MinYear+1),
		})
		if len(batch) >= opts.PaperBatchSize {
			if err := flush(i + 1); err != nil {
				return err
			}
		}
	}
	return flush(opts.Papers)
}

func (g *GenerateService) generateCitations(ctx context.Context, opts GenerateOptions) error {
	if opts.Citations <= 0 {
		return nil
	}
	ids, err := g.Sink.PaperIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) < 2 {
		return fmt.Errorf("need at least two papers to generate citations, have %d", len(ids))
	}

	first := models.CitationDay(opts.FirstCitationDate)
	days := int(models.CitationDay(g.now().UTC()).Sub(first).Hours() / 24)
	if days < 0 {
		days = 0
	}

	batch := make([]models.Citation, 0, opts.CitationBatchSize)
	for i := 0; i < opts.Citations; i++ {
		source := ids[g.rng.IntN(len(ids))]
		target := ids[g.rng.IntN(len(ids))]
		for target == source {
			target = ids[g.rng.IntN(len(ids))]
		}
		batch = append(batch, models.Citation{
			SourcePaperID: source,
			TargetPaperID: target,
			CitationDate:  first.AddDate(0, 0, g.rng.IntN(days+1)),
		})

		if len(batch) >= opts.CitationBatchSize || i == opts.Citations-1 {
			if err := g.Sink.InsertCitationsBatch(ctx, batch); err != nil {
				return err
			}
			generatedRecords.WithLabelValues("citation").Add(float64(len(batch)))
			batch = batch[:0]
			if (i+1)%100000 == 0 {
				g.Logger.Info("Created citations", zap.Int("count", i+1))
			}
		}
	}
	return nil
}
