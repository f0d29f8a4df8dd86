package main

import (
	"errors"

	"citegraph/cache"
	"citegraph/services"
	"citegraph/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(migrateCmd())
	dbCmd.AddCommand(clearCmd())
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := storage.NewStoreFromConfig(cfg)
			if err != nil {
				return err
			}
			if err := store.Migrate(); err != nil {
				return err
			}
			logger.Info("Migration complete")
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "clear",
		Short: "Delete all papers and citations and the cached rankings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the database without --yes")
			}
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := storage.NewStoreFromConfig(cfg)
			if err != nil {
				return err
			}
			papers, citations, err := store.ClearAll(cmd.Context())
			if err != nil {
				return err
			}

			backend := cache.New(cfg)
			defer backend.Close()
			keys := services.NewTopPapersCache(backend, nil, cfg.CacheTTL, logger).ClearAll(cmd.Context())

			logger.Info("Database cleared",
				zap.Int64("papers_deleted", papers),
				zap.Int64("citations_deleted", citations),
				zap.Int64("cache_keys_deleted", keys))
			return nil
		},
	}
	command.Flags().BoolVar(&yes, "yes", false, "confirm deletion of all data")
	return command
}
