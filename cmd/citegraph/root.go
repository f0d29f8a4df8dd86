package main

import (
	"os"

	"citegraph/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "citation graph admin tool",
	Example: `citegraph db migrate
citegraph db clear --yes
citegraph generate --papers 10000 --citations 1000000
citegraph stats
citegraph cache clear
citegraph cache clear --topic AI --limit 50`,
	SilenceUsage: true,
}

// Execute führt das Root-Command aus und beendet den Prozess bei Fehlern.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(cacheCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

// env lädt Konfiguration und einen Development-Logger für die Kommandozeile.
func env() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
