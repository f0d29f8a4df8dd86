package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"citegraph/cache"
	"citegraph/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheStatus beschreibt, woher ein Ergebnis stammt.
type CacheStatus string

const (
	CacheHit    CacheStatus = "HIT"
	CacheMiss   CacheStatus = "MISS"
	CacheBypass CacheStatus = "BYPASS"
)

// DefaultCacheTTL ist die Lebensdauer eines gecachten Rankings.
const DefaultCacheTTL = 60 * time.Second

// TopPapersResult ist ein Ranking samt Cache-Metadaten.
type TopPapersResult struct {
	Papers []models.TopPaper
	Status CacheStatus
	Key    string
}

// TopPapersCache legt einen Cache-Aside-Layer um einen Ranker.
//
// Der Cache ist reine Optimierung: Lese-, Schreib- und Löschfehler werden geloggt und
// geschluckt, Anfragen laufen dann gegen die Datenbank. Gleichzeitige Misses auf
// denselben Key teilen sich eine Berechnung. Jedes Clear erhöht die Generation;
// Berechnungen aus einer älteren Generation schreiben nicht mehr in den Cache.
type TopPapersCache struct {
	Cache  cache.Cache
	Ranker Ranker
	TTL    time.Duration
	Logger *zap.Logger

	flight     singleflight.Group
	generation atomic.Uint64
}

// NewTopPapersCache erstellt den Cache-Aside-Layer. ttl <= 0 bedeutet DefaultCacheTTL.
func NewTopPapersCache(c cache.Cache, ranker Ranker, ttl time.Duration, logger *zap.Logger) *TopPapersCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TopPapersCache{
		Cache:  c,
		Ranker: ranker,
		TTL:    ttl,
		Logger: logger,
	}
}

// GetOrCompute liefert das Ranking aus dem Cache (HIT) oder berechnet und cached es (MISS).
// Nur ungültige Eingaben und Datenbankfehler führen zu einem Fehler.
func (t *TopPapersCache) GetOrCompute(ctx context.Context, topic string, limit int) (*TopPapersResult, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	key := cache.TopPapersKey(topic, limit)
	log := t.Logger.With(zap.String("cache_key", key))

	if papers, ok := t.read(ctx, key, log); ok {
		log.Info("Cache hit")
		topPapersRequests.WithLabelValues(string(CacheHit)).Inc()
		return &TopPapersResult{Papers: papers, Status: CacheHit, Key: key}, nil
	}

	log.Info("Cache miss, querying database")
	// Die gemeinsame Berechnung darf nicht abbrechen, nur weil der erste Aufrufer aufgibt.
	// Nach einem Clear startet eine neue Berechnung statt der laufenden beizutreten.
	gen := t.generation.Load()
	ch := t.flight.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		computeCtx := context.WithoutCancel(ctx)
		papers, err := t.Ranker.RankTopPapers(computeCtx, topic, limit)
		if err != nil {
			return nil, err
		}
		t.write(computeCtx, key, gen, papers, log)
		return papers, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug("Joined in-flight computation")
		}
		topPapersRequests.WithLabelValues(string(CacheMiss)).Inc()
		return &TopPapersResult{Papers: res.Val.([]models.TopPaper), Status: CacheMiss, Key: key}, nil
	}
}

// Bypass berechnet das Ranking direkt, ohne den Cache zu lesen oder zu schreiben.
func (t *TopPapersCache) Bypass(ctx context.Context, topic string, limit int) (*TopPapersResult, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	key := cache.TopPapersKey(topic, limit)
	t.Logger.Info("Direct database query, bypassing cache", zap.String("cache_key", key))

	papers, err := t.Ranker.RankTopPapers(ctx, topic, limit)
	if err != nil {
		return nil, err
	}
	topPapersRequests.WithLabelValues(string(CacheBypass)).Inc()
	return &TopPapersResult{Papers: papers, Status: CacheBypass, Key: key}, nil
}

// ClearAll entfernt alle Ranking-Einträge und liefert deren Anzahl. Fehler werden nur geloggt.
func (t *TopPapersCache) ClearAll(ctx context.Context) int64 {
	t.generation.Add(1)
	n, err := t.Cache.DelPrefix(ctx, cache.TopPapersPrefix)
	if err != nil {
		cacheErrors.WithLabelValues("clear_all").Inc()
		t.Logger.Warn("Error clearing cache", zap.Int64("deleted", n), zap.Error(err))
		return n
	}
	t.Logger.Info("Cleared cache keys", zap.Int64("deleted", n))
	return n
}

// ClearOne entfernt den Eintrag für (topic, limit). cleared ist false, wenn das Backend
// nicht erreichbar war.
func (t *TopPapersCache) ClearOne(ctx context.Context, topic string, limit int) (key string, cleared bool) {
	key = cache.TopPapersKey(topic, limit)
	t.generation.Add(1)
	if _, err := t.Cache.Del(ctx, key); err != nil {
		cacheErrors.WithLabelValues("clear_one").Inc()
		t.Logger.Warn("Error clearing cache", zap.String("cache_key", key), zap.Error(err))
		return key, false
	}
	t.Logger.Info("Cache cleared", zap.String("cache_key", key))
	return key, true
}

func (t *TopPapersCache) read(ctx context.Context, key string, log *zap.Logger) ([]models.TopPaper, bool) {
	buf, err := t.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			cacheErrors.WithLabelValues("get").Inc()
			log.Warn("Cache read error, falling back to database", zap.Error(err))
		}
		return nil, false
	}

	var papers []models.TopPaper
	if err := json.Unmarshal(buf, &papers); err != nil {
		cacheErrors.WithLabelValues("decode").Inc()
		log.Warn("Malformed cache payload, falling back to database", zap.Error(err))
		return nil, false
	}
	if papers == nil {
		papers = []models.TopPaper{}
	}
	return papers, true
}

// write speichert ein Ranking der Generation gen. Lief zwischendurch ein Clear, wird
// nichts gespeichert bzw. der gerade geschriebene Eintrag wieder entfernt.
func (t *TopPapersCache) write(ctx context.Context, key string, gen uint64, papers []models.TopPaper, log *zap.Logger) {
	buf, err := json.Marshal(papers)
	if err != nil {
		cacheErrors.WithLabelValues("encode").Inc()
		log.Warn("Could not encode ranking for cache", zap.Error(err))
		return
	}
	if t.generation.Load() != gen {
		log.Info("Cache cleared during computation, not storing result")
		return
	}
	if err := t.Cache.Set(ctx, key, buf, t.TTL); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		log.Warn("Cache write error, continuing without cache", zap.Error(err))
		return
	}
	if t.generation.Load() != gen {
		if _, err := t.Cache.Del(ctx, key); err != nil {
			cacheErrors.WithLabelValues("del").Inc()
			log.Warn("Could not drop result stored across a clear", zap.Error(err))
		}
		return
	}
	log.Info("Stored result in cache", zap.Duration("ttl", t.TTL))
}
