package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Unterstützte Cache-Backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Obergrenzen für Bulk-Inserts: PostgreSQL erlaubt höchstens 65535 Bind-Parameter
// pro Statement; papers schreibt 4 Spalten pro Zeile, citations 3.
const (
	MaxPaperBatchSize    = 65535 / 4
	MaxCitationBatchSize = 65535 / 3
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`

	// Schreibende Admin-Endpunkte verlangen diesen Key im X-API-KEY Header, falls gesetzt.
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"redis"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"redis"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	// Obergrenze für jeden einzelnen Cache-Aufruf; ein langsamer Cache wird so zum MISS.
	CacheTimeout time.Duration `envconfig:"CACHE_TIMEOUT" default:"250ms"`

	GeneratePapers    int `envconfig:"GENERATE_PAPERS" default:"10000"`
	GenerateCitations int `envconfig:"GENERATE_CITATIONS" default:"1000000"`
	PaperBatchSize    int `envconfig:"PAPER_BATCH_SIZE" default:"1000"`
	CitationBatchSize int `envconfig:"CITATION_BATCH_SIZE" default:"5000"`

	StatsSnapshotSchedule string `envconfig:"STATS_SNAPSHOT_SCHEDULE" default:"*/15 * * * *"`

	// S3-kompatibler Object Storage für Statistik-Snapshots und Backups.
	S3URL    string `envconfig:"S3_URL"`
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Anzahl der Datenbank-Backups, die cmd/backup im Bucket behält.
	KeepBackups int `envconfig:"KEEP_BACKUPS" default:"4"`

	LogDevelopment bool `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// RedisAddr gibt host:port des Redis-Servers zurück.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// SnapshotsEnabled meldet, ob Statistik-Snapshots nach S3 hochgeladen werden sollen.
func (c *Config) SnapshotsEnabled() bool {
	return c.S3Bucket != ""
}

// Validate prüft Werte, die envconfig selbst nicht abdecken kann.
func (c *Config) Validate() error {
	switch strings.ToLower(c.CacheBackend) {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.PaperBatchSize <= 0 || c.PaperBatchSize > MaxPaperBatchSize {
		return fmt.Errorf("PAPER_BATCH_SIZE must be between 1 and %d, got %d", MaxPaperBatchSize, c.PaperBatchSize)
	}
	if c.CitationBatchSize <= 0 || c.CitationBatchSize > MaxCitationBatchSize {
		return fmt.Errorf("CITATION_BATCH_SIZE must be between 1 and %d, got %d", MaxCitationBatchSize, c.CitationBatchSize)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
