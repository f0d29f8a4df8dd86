package main

import (
	"errors"

	"citegraph/cache"
	"citegraph/services"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "cache commands",
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd())
}

func cacheClearCmd() *cobra.Command {
	var (
		topic string
		limit int
	)
	command := &cobra.Command{
		Use:   "clear",
		Short: "Invalidate cached top-papers rankings",
		RunE: func(cmd *cobra.Command, args []string) error {
			topicSet := cmd.Flags().Changed("topic")
			if topicSet != cmd.Flags().Changed("limit") {
				return errors.New("--topic and --limit must be given together")
			}

			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer logger.Sync()

			backend := cache.New(cfg)
			defer backend.Close()
			layer := services.NewTopPapersCache(backend, nil, cfg.CacheTTL, logger)

			if topicSet {
				key, cleared := layer.ClearOne(cmd.Context(), topic, limit)
				if !cleared {
					return errors.New("could not clear " + key)
				}
				cmd.Println("cleared", key)
				return nil
			}
			cmd.Println("cleared", layer.ClearAll(cmd.Context()), "keys")
			return nil
		},
	}
	command.Flags().StringVar(&topic, "topic", "", "topic of a single entry")
	command.Flags().IntVar(&limit, "limit", services.DefaultLimit, "limit of a single entry")
	return command
}
