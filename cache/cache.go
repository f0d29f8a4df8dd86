package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"citegraph/config"
)

// ErrCacheMiss wird von Get zurückgegeben, wenn der Key nicht (mehr) existiert.
var ErrCacheMiss = errors.New("cache miss")

// TopPapersPrefix ist der Namespace aller Ranking-Einträge. ClearAll hängt an diesem Präfix.
const TopPapersPrefix = "top_papers:"

// TopPapersKey baut den Cache-Key für (topic, limit), z.B. "top_papers:AI:50".
func TopPapersKey(topic string, limit int) string {
	return fmt.Sprintf("%s%s:%d", TopPapersPrefix, topic, limit)
}

// Cache ist ein einfacher Key/Value-Speicher mit TTL.
//
// Einträge können jederzeit verfallen, verdrängt oder überschrieben werden.
type Cache interface {
	// Get liefert den Wert zu key oder ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set schreibt val mit der gegebenen TTL.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Del löscht die gegebenen Keys und liefert die Anzahl tatsächlich gelöschter Einträge.
	Del(ctx context.Context, keys ...string) (int64, error)
	// DelPrefix löscht alle Keys mit dem Präfix.
	DelPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// New wählt das Backend anhand von CACHE_BACKEND.
func New(cfg *config.Config) Cache {
	if strings.EqualFold(cfg.CacheBackend, config.CacheBackendMemory) {
		return NewMemoryCache()
	}
	return NewRedisCache(RedisOptions{
		Addr:      cfg.RedisAddr(),
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		OpTimeout: cfg.CacheTimeout,
	})
}
