package main

import (
	"encoding/json"

	"citegraph/services"
	"citegraph/storage"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var upload bool
	command := &cobra.Command{
		Use:   "stats",
		Short: "Print corpus statistics as JSON",
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
			stats := services.NewStatisticsService(store, logger)

			if upload {
				objects, err := storage.NewObjectStore(cfg)
				if err != nil {
					return err
				}
				_, err = services.NewSnapshotJob(stats, objects, logger).Snapshot(cmd.Context())
				return err
			}

			report, err := stats.Compute(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	command.Flags().BoolVar(&upload, "upload", false, "upload a snapshot to S3_BUCKET instead of printing")
	return command
}
