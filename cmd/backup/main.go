package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"time"

	"citegraph/config"
	"citegraph/storage"

	"go.uber.org/zap"
)

const backupPrefix = "backups/"

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if cfg.S3Bucket == "" {
		logging.Fatal("S3_BUCKET ist nicht gesetzt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// 1. Dump des Zitationsgraphen
	dumpData, err := createDump(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des DB-Dumps", zap.Error(err))
	}

	objects, err := storage.NewObjectStore(cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	// 2. Hochladen
	key := backupKey(time.Now())
	link, err := objects.Upload(ctx, key, dumpData)
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.Error(err))
	}
	logging.Info("Backup hochgeladen", zap.String("link", link), zap.Int("bytes", len(dumpData)))

	// 3. Alte Backups rotieren
	if err := rotateBackups(ctx, objects, cfg.KeepBackups, logging); err != nil {
		logging.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}

	logging.Info("Backup-Prozess erfolgreich abgeschlossen.")
}

func backupKey(t time.Time) string {
	return fmt.Sprintf("%sbackup-%s.sql.gz", backupPrefix, t.UTC().Format("2006-01-02T15-04-05Z"))
}

func createDump(ctx context.Context, cfg *config.Config) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.DBHost,
		"-p", strconv.Itoa(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-t", "papers",
		"-t", "citations",
		"-w", // Passwort kommt über PGPASSWORD
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.DBPassword))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, stdout); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rotateBackups(ctx context.Context, objects *storage.ObjectStore, keep int, logging *zap.Logger) error {
	existing, err := objects.List(ctx, backupPrefix)
	if err != nil {
		return err
	}

	expired := storage.ExpiredObjects(existing, keep)
	if len(expired) == 0 {
		logging.Info("Keine Rotation nötig", zap.Int("backups", len(existing)), zap.Int("keep", keep))
		return nil
	}
	for _, obj := range expired {
		logging.Info("Lösche altes Backup", zap.String("key", obj.Key))
		if err := objects.Delete(ctx, obj.Key); err != nil {
			logging.Warn("Backup konnte nicht gelöscht werden", zap.String("key", obj.Key), zap.Error(err))
		}
	}
	return nil
}
