package main

import (
	"citegraph/services"
	"citegraph/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func generateCmd() *cobra.Command {
	var (
		papers    int
		citations int
		seed      uint64
	)
	command := &cobra.Command{
		Use:   "generate",
		Short: "Insert synthetic papers and citations",
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

			opts := services.DefaultGenerateOptions()
			opts.Papers = cfg.GeneratePapers
			opts.Citations = cfg.GenerateCitations
			opts.PaperBatchSize = cfg.PaperBatchSize
			opts.CitationBatchSize = cfg.CitationBatchSize
			if cmd.Flags().Changed("papers") {
				opts.Papers = papers
			}
			if cmd.Flags().Changed("citations") {
				opts.Citations = citations
			}

			gen := services.NewGenerateService(store, opts, logger)
			if cmd.Flags().Changed("seed") {
				gen.WithSeed(seed)
			}
			res, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("Generation finished",
				zap.Int64("papers_total", res.PapersCreated),
				zap.Int64("citations_total", res.CitationsCreated))
			return nil
		},
	}
	command.Flags().IntVar(&papers, "papers", 0, "number of papers (default GENERATE_PAPERS)")
	command.Flags().IntVar(&citations, "citations", 0, "number of citations (default GENERATE_CITATIONS)")
	command.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible data")
	return command
}
