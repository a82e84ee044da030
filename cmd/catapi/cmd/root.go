package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ollivarila/wsk2/internal/pkg/config"
	"github.com/ollivarila/wsk2/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catapi",
	Short: "Cats API server",
	Long: `Cats API serves users, cats and their photos over REST and GraphQL.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if lvl, _ := cmd.Root().PersistentFlags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		log = logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (env: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(adminCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
