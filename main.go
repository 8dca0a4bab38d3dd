package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	configFile string
	logLevel   string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "stopfix",
	Short: "Add missing stop subtypes and directions to stop and yield signs",
	Long: `stopfix reads an OSM XML extract, derives stop=all/minor and direction=forward/backward
for highway=stop and highway=give_way nodes from the road network around them and writes
the extract back with only those nodes changed.

The extract must contain every road way touching the area of interest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "loading env file %s", envFile)
		}
		if !cmd.Flags().Changed("config") {
			if v := os.Getenv("STOPFIX_CONFIG"); v != "" {
				configFile = v
			}
		}
		if !cmd.Flags().Changed("log-level") {
			if v := os.Getenv("STOPFIX_LOG_LEVEL"); v != "" {
				logLevel = v
			}
		}
		return SetupLogging(os.Stderr, logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "stopfix.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file")
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(scanCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
