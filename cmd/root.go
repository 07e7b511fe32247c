package main

import (
	"fmt"
	"os"

	"manytomany/config"
	"manytomany/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "manytomany",
	Short: "REST service for students, projects and their associations",
	Long: `manytomany serves students and projects over HTTP and keeps the
student/project associations in PostgreSQL.

Configuration comes from environment variables (a .env file in the working
directory is loaded first) or from the YAML file named by CONFIG_FILE.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. Called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("Command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(Version)
	if err != nil {
		return err
	}

	logger, err = logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("env", cfg.Env))
	return nil
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
}
